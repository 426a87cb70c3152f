package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"podcast-orchestrator/internal/orchestrator"
	"podcast-orchestrator/internal/podcast"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderStatus(report orchestrator.StatusReport) string {
	rows := make([][]string, 0, len(report.Videos))
	for _, rec := range report.Videos {
		detail := rec.VideoURL
		if rec.Status == orchestrator.StatusFailed {
			detail = rec.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.SceneID),
			string(rec.Status),
			fmt.Sprintf("%d%%", rec.Progress),
			detail,
		})
	}
	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Scene", "Status", "Progress", "Video / Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	))
	b.WriteString("\n")
	b.WriteString(progressLine(report.Progress))
	b.WriteString("\n")
	return b.String()
}

func renderScript(script podcast.Script) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", script.Title)
	if script.Overview != "" {
		fmt.Fprintf(&b, "%s\n", script.Overview)
	}
	rows := make([][]string, 0, len(script.Scenes))
	for _, scene := range script.Scenes {
		rows = append(rows, []string{
			strconv.Itoa(scene.ID),
			scene.Title,
			truncate(scene.VisualDirection, 60),
		})
	}
	b.WriteString(renderTable(
		[]string{"#", "Title", "Visual Direction"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
	b.WriteString("\n")
	return b.String()
}

func progressLine(p orchestrator.Progress) string {
	line := fmt.Sprintf("%3d%%  %d/%d completed, %d failed, %d in progress",
		p.OverallProgress, p.VideosCompleted, p.TotalVideos, p.VideosFailed, p.VideosInProgress)
	if p.CurrentScene != nil {
		line += fmt.Sprintf(" (scene %d)", *p.CurrentScene)
	}
	return line
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
