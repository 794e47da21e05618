/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package cmd

import (
	"os"

	"github.com/dustin/go-humanize" //nolint:misspell
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"
	"github.com/wtsi-hgi/jovian/config"
)

const noValue = "-"

// options for this cmd.
var (
	pathsLocal bool
	pathsJSON  bool
)

// pathRow is one reference database in the output of the paths command.
type pathRow struct {
	DB     string `codec:"db"`
	Path   string `codec:"path"`
	Source string `codec:"source"`
	Exists bool   `codec:"exists"`
	Size   uint64 `codec:"size,omitempty"`
}

// pathsCmd represents the paths command.
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the reference database paths a run would use",
	Long: `Show the reference database paths a run would use.

For each reference database, shows the path a run without database options
would use, whether that came from your stored settings or the built-in defaults
for the execution mode (grid, unless --local), and whether the path exists.
Sizes are only shown for databases that are single files.

Nothing is stored or validated. With --json, the same information is printed as
JSON, with sizes in bytes.`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		setCLIFormat()

		mode := config.DRMAA
		if pathsLocal {
			mode = config.Local
		}

		rows := pathRows(config.NewResolver(settingsStore(), appLogger).Preview(mode))

		if pathsJSON {
			if err := codec.NewEncoder(os.Stdout, &codec.JsonHandle{Indent: 2}).Encode(rows); err != nil {
				die("%s", err)
			}

			cliPrint("\n")

			return
		}

		printPathsTable(rows)
	},
}

func init() {
	RootCmd.AddCommand(pathsCmd)

	pathsCmd.Flags().BoolVar(&pathsLocal, "local", false, "show the defaults for local rather than grid runs")
	pathsCmd.Flags().BoolVar(&pathsJSON, "json", false, "output JSON")
}

func pathRows(paths config.ReferenceDataPaths, sources map[config.Slot]config.Source) []pathRow {
	rows := make([]pathRow, 0, len(config.Slots()))

	for _, s := range config.Slots() {
		row := pathRow{DB: s.Key(), Path: paths.Get(s), Source: string(sources[s])}

		if fi, err := os.Stat(row.Path); err == nil {
			row.Exists = true

			if !fi.IsDir() {
				row.Size = uint64(fi.Size()) //nolint:gosec
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// printPathsTable prints the rows as a table to STDOUT.
func printPathsTable(rows []pathRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Database", "Path", "Source", "Exists", "Size"})

	for _, row := range rows {
		size := noValue
		if row.Size > 0 {
			size = humanize.IBytes(row.Size)
		}

		exists := "no"
		if row.Exists {
			exists = "yes"
		}

		source := row.Source
		if source == "" {
			source = noValue
		}

		table.Append([]string{row.DB, row.Path, source, exists, size})
	}

	table.Render()
}
