// Package exportsvc renders mark entries as spreadsheets.
package exportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/klu2500030136/lptd-app/core/mark"
)

const (
	MarksSheet = "Marks"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var marksHeader = []interface{}{"ID", "Student ID", "Student Name", "Subject", "Marks", "Score", "CGPA"}

// WriteMarksXLSX writes marks, in the given order, to w as a single-sheet workbook.
func WriteMarksXLSX(w io.Writer, marks []mark.MarkEntry) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), MarksSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err = setRow(f, 1, marksHeader); err != nil {
		return err
	}
	for i, m := range marks {
		row := []interface{}{m.ID, m.StudentID, m.StudentName, m.Subject, m.Marks, m.Score, m.CGPA}
		if err = setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err = f.SetPanes(MarksSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return errors.Wrap(err, "freezing header")
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func setRow(f *excelize.File, n int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	if err = f.SetSheetRow(MarksSheet, cell, &values); err != nil {
		return errors.Wrapf(err, "setting row %d", n)
	}
	return nil
}
