package dataset

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	reportTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	reportLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	reportValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	reportWarn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))
	reportBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	tableCell = lipgloss.NewStyle().Padding(0, 1)
)

// RenderReport formats the summary for a terminal.
func RenderReport(s Summary, outputs ...string) string {
	line := func(label string, value any) string {
		return fmt.Sprintf("%s %s", reportLabel.Render(label), reportValue.Render(fmt.Sprint(value)))
	}
	lines := []string{
		reportTitle.Render("运动会数据生成完成"),
		line("学生总数:", s.TotalStudents),
		line("班级总数:", s.TotalClasses),
		line("赛程项目数:", s.ScheduledEvents),
		line("比赛项目总数:", s.EventsWithParticipants),
	}
	if len(s.PerGrade) > 0 {
		lines = append(lines, "", reportLabel.Render("各年级人数统计:"))
		for _, gc := range s.PerGrade {
			lines = append(lines, line(fmt.Sprintf("  %s:", gc.Grade), fmt.Sprintf("%d人", gc.Students)))
		}
	}
	if len(s.SkippedEvents) > 0 {
		lines = append(lines, "", reportWarn.Render(fmt.Sprintf("未分配选手的项目: %s", strings.Join(s.SkippedEvents, ", "))))
	}
	if s.SynthesizedLanes > 0 {
		lines = append(lines, reportWarn.Render(fmt.Sprintf("占位选手: %d", s.SynthesizedLanes)))
	}
	if len(s.SampleEvents) > 0 {
		lines = append(lines, "", reportLabel.Render("部分比赛项目示例:"))
		for _, label := range s.SampleEvents {
			lines = append(lines, "  - "+label)
		}
	}
	for _, out := range outputs {
		if strings.TrimSpace(out) == "" {
			continue
		}
		lines = append(lines, line("已保存到:", out))
	}
	return reportBox.Render(strings.Join(lines, "\n"))
}

// RenderTable lays rows out under headers inside the report border.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableCell.Inherit(reportLabel).Bold(true)
			}
			return tableCell
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}
