package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/report"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	app := cli.NewApp()
	app.Name = "chain-lens"
	app.Usage = "decode and analyze Bitcoin transactions and blocks"
	app.Version = "0.1.0"

	app.Commands = []cli.Command{
		{
			Name:      "analyze",
			Usage:     "analyze a single transaction fixture",
			ArgsUsage: "<fixture.json>",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.NewExitError("usage: chain-lens analyze <fixture.json>", 1)
				}
				return runAnalyze(logger, c.Args().Get(0))
			},
		},
		{
			Name:      "analyze-block",
			Usage:     "analyze every block in a blk/rev file pair",
			ArgsUsage: "<blk.dat> <rev.dat> <xor.dat>",
			Action: func(c *cli.Context) error {
				if c.NArg() != 3 {
					return cli.NewExitError("usage: chain-lens analyze-block <blk.dat> <rev.dat> <xor.dat>", 1)
				}
				return runAnalyzeBlock(logger, c.Args().Get(0), c.Args().Get(1), c.Args().Get(2))
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		printError(coreerr.CodeInternal, err.Error())
		os.Exit(1)
	}
}

func runAnalyze(logger *zap.Logger, fixturePath string) error {
	fixtureData, err := os.ReadFile(fixturePath)
	if err != nil {
		printError("FILE_NOT_FOUND", fmt.Sprintf("failed to read fixture: %v", err))
		os.Exit(1)
	}

	var fixture report.Fixture
	if err := json.Unmarshal(fixtureData, &fixture); err != nil {
		printError(coreerr.CodeInvalidJSON, fmt.Sprintf("failed to parse fixture JSON: %v", err))
		os.Exit(1)
	}

	result, err := report.AnalyzeFixture(fixture)
	if err != nil {
		logger.Warn("analyze failed", zap.String("fixture", fixturePath), zap.Error(err))
		printError(coreerr.CodeOf(err), err.Error())
		os.Exit(1)
	}

	if err := writeOutput(result.Txid, result); err != nil {
		printError(coreerr.CodeInternal, err.Error())
		os.Exit(1)
	}

	outputJSON, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(outputJSON))
	return nil
}

func runAnalyzeBlock(logger *zap.Logger, blkPath, revPath, xorPath string) error {
	for _, path := range []string{blkPath, revPath, xorPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			printError("FILE_NOT_FOUND", fmt.Sprintf("file not found: %s", path))
			os.Exit(1)
		}
	}

	blkData, err := os.ReadFile(blkPath)
	if err != nil {
		printError("FILE_NOT_FOUND", err.Error())
		os.Exit(1)
	}
	revData, err := os.ReadFile(revPath)
	if err != nil {
		printError("FILE_NOT_FOUND", err.Error())
		os.Exit(1)
	}
	xorKey, err := os.ReadFile(xorPath)
	if err != nil {
		printError("FILE_NOT_FOUND", err.Error())
		os.Exit(1)
	}

	// strict: a merkle mismatch anywhere in the file aborts the whole run.
	blocks, err := report.AnalyzeBlock(blkData, revData, xorKey, true)
	if err != nil {
		logger.Warn("analyze-block failed", zap.String("blk", blkPath), zap.Error(err))
		printError(coreerr.CodeOf(err), err.Error())
		os.Exit(1)
	}

	for _, block := range blocks {
		if err := writeOutput(block.BlockHeader.BlockHash, block); err != nil {
			printError(coreerr.CodeInternal, err.Error())
			os.Exit(1)
		}
	}

	return nil
}

func writeOutput(name string, v any) error {
	if err := os.MkdirAll("out", 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	outputPath := filepath.Join("out", name+".json")
	if err := os.WriteFile(outputPath, outputJSON, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func printError(code, message string) {
	errOutput := struct {
		OK    bool              `json:"ok"`
		Error map[string]string `json:"error"`
	}{
		OK:    false,
		Error: map[string]string{"code": code, "message": message},
	}
	errJSON, _ := json.Marshal(errOutput)
	fmt.Println(string(errJSON))
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
