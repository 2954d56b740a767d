// Copyright 2023 Practical Formal Methods

// This file is part of stfold.
//
// stfold is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// stfold is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with stfold.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/practical-formal-methods/stfold/analysis"
	"github.com/practical-formal-methods/stfold/ast"
	"github.com/practical-formal-methods/stfold/parser"
)

// nodeReport is one folded AST node in the output. Nodes whose candidate
// set stayed empty are omitted from the report.
type nodeReport struct {
	Kind     string           `json:"kind"`
	Location string           `json:"location"`
	Values   *ast.ConstValues `json:"values"`
}

// unitReport is the result of folding one translation unit.
type unitReport struct {
	Source     string       `json:"source"`
	SourceHash string       `json:"sourceHash"`
	Errors     int          `json:"errors"`
	ParseError string       `json:"parseError,omitempty"`
	Nodes      []nodeReport `json:"nodes,omitempty"`
}

// foldUnit parses and folds a single expression source. A parse failure
// is recorded in the report rather than aborting the run, so one broken
// unit does not block the rest.
func foldUnit(src, name string) unitReport {
	report := unitReport{
		Source:     name,
		SourceHash: crypto.Keccak256Hash([]byte(src)).Hex(),
	}

	root, err := parser.ParseExpression(src, name)
	if err != nil {
		log.Error("parse failed", "unit", name, "err", err)
		report.ParseError = err.Error()
		return report
	}

	folder := analysis.NewConstantFolder()
	report.Errors = folder.Fold(root)

	ast.Inspect(root, func(exp ast.Expression) {
		if exp.Const().Empty() {
			return
		}
		report.Nodes = append(report.Nodes, nodeReport{
			Kind:     ast.Kind(exp),
			Location: exp.Loc().Range(),
			Values:   exp.Const(),
		})
	})
	return report
}

func run(ctx *cli.Context) error {
	var reports []unitReport

	for i, src := range ctx.StringSlice("expr") {
		reports = append(reports, foldUnit(src, fmt.Sprintf("expr-%d", i+1)))
	}
	for _, path := range ctx.Args().Slice() {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		reports = append(reports, foldUnit(string(src), filepath.Base(path)))
	}
	if len(reports) == 0 {
		return fmt.Errorf("no input: pass --expr or source files")
	}

	out := os.Stdout
	if path := ctx.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reports); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	total := 0
	for _, r := range reports {
		total += r.Errors
	}
	if total > 0 {
		return fmt.Errorf("%d error(s) across %d unit(s)", total, len(reports))
	}
	return nil
}

func main() {
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StreamHandler(os.Stderr, log.TerminalFormat(false))))

	app := &cli.App{
		Name:  "stfold",
		Usage: "fold constant subexpressions of IEC 61131-3 Structured Text",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "expr",
				Usage: "expression source to fold (repeatable)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "write the JSON report to `FILE` instead of stdout",
			},
		},
		ArgsUsage: "[file ...]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
