package ui

import "github.com/desertthunder/promo/internal/tasks"

// row is one selectable line of the dashboard: a release card header or one of its tasks.
type row struct {
	board  int
	taskID int
}

func (r row) isHeader() bool { return r.taskID == 0 }

// flatten lists the selectable rows of every card in display order.
func flatten(boards []*tasks.Board) []row {
	var rows []row
	for i, b := range boards {
		rows = append(rows, row{board: i})
		for _, t := range b.Shown() {
			rows = append(rows, row{board: i, taskID: t.TaskID})
		}
	}
	return rows
}

// locate finds the row for a board and task, falling back to the board's header.
func locate(rows []row, board, taskID int) int {
	header := 0
	for i, r := range rows {
		if r.board != board {
			continue
		}
		if r.taskID == taskID {
			return i
		}
		if r.isHeader() {
			header = i
		}
	}
	return header
}
