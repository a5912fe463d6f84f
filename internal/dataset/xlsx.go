package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/kingrea/sportsmeet/internal/meet"
)

const (
	scheduleSheet = "赛程"
	playersSheet  = "参赛名单"
)

var sessionTitles = map[meet.SessionKind]string{
	meet.MorningTrack:   "上午径赛",
	meet.AfternoonTrack: "下午径赛",
	meet.MorningField:   "上午田赛",
	meet.AfternoonField: "下午田赛",
}

// WriteXLSX exports the schedule and the participant lists as a workbook.
func WriteXLSX(path string, doc meet.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return fmt.Errorf("dataset: xlsx: %w", err)
	}
	if err := writeRows(f, scheduleSheet, []any{"日期", "场次", "时间", "年级", "项目"}, scheduleRows(doc.Games)); err != nil {
		return err
	}
	if _, err := f.NewSheet(playersSheet); err != nil {
		return fmt.Errorf("dataset: xlsx: %w", err)
	}
	if err := writeRows(f, playersSheet, []any{"项目", "组别", "道次", "姓名", "班级", "成绩"}, playerRows(doc.Players)); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset: ensure xlsx dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return nil
}

func scheduleRows(games meet.Games) [][]any {
	var rows [][]any
	for _, day := range games.Days {
		for _, session := range day.Sessions {
			title := sessionTitles[session.Kind]
			if title == "" {
				title = string(session.Kind)
			}
			for _, ev := range session.Events {
				rows = append(rows, []any{day.Name, title, ev.Time, string(ev.Grade), ev.Label})
			}
		}
	}
	return rows
}

func playerRows(players meet.Players) [][]any {
	var rows [][]any
	for _, ep := range players.All() {
		for g, group := range ep.Groups {
			for _, lane := range group {
				rows = append(rows, []any{ep.Name, g + 1, lane.Road, lane.Name, lane.Class, lane.Data})
			}
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("dataset: xlsx %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("dataset: xlsx %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("dataset: xlsx %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
