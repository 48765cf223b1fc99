package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sdkbench/cmd/ui/report"
	"sdkbench/pkg/detector"
	"sdkbench/pkg/fcorr"
	"sdkbench/pkg/observability"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runners/builtin"
	"sdkbench/pkg/runtime"
	"sdkbench/pkg/util"
)

var detectCmd = &cobra.Command{
	Use:   "detect [PROJECT_PATH]",
	Short: "Show what every registered runner detects in a directory",
	Long: `Run each registered runner's detection heuristic against a directory and
print its confidence and evidence. Nothing is installed or executed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

// detectReport is the JSON shape of the detect command
type detectReport struct {
	Dir       string                     `json:"dir"`
	Selected  *string                    `json:"selected"`
	Runners   []detector.DetectionResult `json:"runners"`
	Missing   map[string][]string        `json:"missing_tools,omitempty"`
	Artifacts map[string][]string        `json:"install_artifacts,omitempty"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	projectPath := "."
	if len(args) > 0 {
		projectPath = args[0]
	}
	dir, err := util.ValidateProjectPath(projectPath)
	if err != nil {
		return err
	}

	registry := builtin.NewRegistry(runners.Env{Logger: observability.GetLogger()})
	rep := detectReport{
		Dir:       dir,
		Runners:   registry.DetectAll(dir),
		Missing:   map[string][]string{},
		Artifacts: map[string][]string{},
	}
	if _, best := registry.Detect(dir); best.Detected {
		rep.Selected = &best.Runner
	}
	for _, d := range rep.Runners {
		if !d.Detected {
			continue
		}
		if tools := runtime.MissingTools(d.Language); len(tools) > 0 {
			rep.Missing[d.Runner] = tools
		}
		if dirs := runtime.PresentArtifacts(d.Language, dir); len(dirs) > 0 {
			rep.Artifacts[d.Runner] = dirs
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, rep)
	}

	fmt.Fprint(out, report.Detections(dir, rep.Runners, rep.Missing, rep.Artifacts))
	if rep.Selected != nil {
		fmt.Fprintln(out, endingMsgStyle.Render("Selected runner: "+*rep.Selected))
	} else {
		fmt.Fprintln(out, tipMsgStyle.Render(fcorr.NoRunnerMessage))
	}
	return nil
}
