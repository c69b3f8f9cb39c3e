package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/discovery"
	"github.com/kayz/promptforge/internal/llm"
	"github.com/kayz/promptforge/internal/template"
	"github.com/kayz/promptforge/internal/workspace"
)

var (
	renderFile     string
	renderVars     []string
	renderEstimate bool
)

var renderCmd = &cobra.Command{
	Use:   "render [set]",
	Short: "Interpolate a prompt set or a single template file",
	Long: `Renders the templates of a named prompt set with its variable file, or a
single template file with --file. Override variables with repeated
--var name=value flags. Unmapped placeholders are reported and left in
place so partial previews still print.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderFile, "file", "", "Template file path relative to the prompt directory")
	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "Variable override name=value (repeatable)")
	renderCmd.Flags().BoolVar(&renderEstimate, "estimate", false, "Print a rough token estimate per rendered template")
}

func runRender(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	if (len(args) == 0) == (renderFile == "") {
		return fmt.Errorf("name exactly one prompt set or pass --file")
	}

	overrides := template.Namespace{}
	for _, pair := range renderVars {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return fmt.Errorf("bad --var %q (want name=value)", pair)
		}
		overrides[name] = template.ValueSpec{Value: value}
	}

	ns, err := cfg.Namespace()
	if err != nil {
		return err
	}

	texts := map[string]string{}
	if renderFile != "" {
		text, err := workspace.LoadPromptFile(root, cfg, renderFile)
		if err != nil {
			return err
		}
		texts[renderFile] = text
	} else {
		sets, _, err := discovery.Discover(root, cfg)
		if err != nil {
			return err
		}
		var set *discovery.PromptSet
		for i := range sets {
			if sets[i].Name == args[0] {
				set = &sets[i]
				break
			}
		}
		if set == nil {
			return fmt.Errorf("prompt set %q not found", args[0])
		}
		if set.VarFile != nil {
			vars, err := workspace.LoadVarsFile(filepath.Join(cfg.VarsDir(root), filepath.FromSlash(set.VarFile.Path)))
			if err != nil {
				return err
			}
			setNS, err := template.BuildNamespace(vars)
			if err != nil {
				return err
			}
			ns = ns.Merge(setNS)
		}
		for role, pf := range set.Prompts {
			text, err := workspace.LoadPromptFile(root, cfg, pf.Path)
			if err != nil {
				return err
			}
			texts[role] = text
		}
	}
	ns = ns.Merge(overrides)

	keys := make([]string, 0, len(texts))
	for key := range texts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "system") != (keys[j] == "system") {
			return keys[i] == "system"
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		res := template.Interpolate(texts[key], ns, root, cfg.Template.Delimiters)
		fmt.Printf("--- %s ---\n%s\n", key, res.Text)
		if renderEstimate {
			fmt.Printf("(~%d tokens)\n", llm.EstimateTokens(res.Text))
		}
		if len(res.Unmapped) > 0 {
			fmt.Printf("unmapped: %s\n", strings.Join(res.Unmapped, ", "))
		}
		for _, name := range sortedErrorNames(res.Errors) {
			fmt.Printf("error: %s (%s)\n", name, res.Errors[name])
		}
	}
	return nil
}

func sortedErrorNames(errs map[string]template.ErrorKind) []string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
