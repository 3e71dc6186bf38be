package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vilaca/gitlab-desk/internal/service"
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeTable prints rows under header.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	table.Header(cols...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}
	return table.Render()
}

// render prints a dispatcher response. In JSON mode the whole response is
// printed, errors included; in table mode table is called with the data.
// A failed response is returned as an error so the process exits non-zero.
func render[T any](c *cli, resp service.Response[T], table func(T) error) error {
	if c.output == "json" {
		if err := writeJSON(c.out, resp); err != nil {
			return err
		}
		if !resp.OK() {
			return errors.New(resp.Error)
		}
		return nil
	}
	if !resp.OK() {
		return errors.New(resp.Error)
	}
	return table(resp.Data)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
