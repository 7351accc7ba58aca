package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	bannergen "github.com/goliatone/go-bannergen"
	"github.com/goliatone/go-bannergen/pkg/capture"
	"github.com/goliatone/go-bannergen/pkg/orchestrator"
	"github.com/goliatone/go-bannergen/pkg/report"
)

// config is the optional YAML configuration file. Flags win over file
// values.
type config struct {
	Output     string  `yaml:"output"`
	Rasterizer string  `yaml:"rasterizer"`
	Scale      float64 `yaml:"scale"`
	SettleMS   int     `yaml:"settle_ms"`
}

func main() {
	templatePath := flag.String("template", "", "uploaded template bundle (.zip)")
	configPath := flag.String("config", "", "YAML config file")
	output := flag.String("output", "", "output archive path (default banners.zip)")
	rasterizer := flag.String("rasterizer", "", "rasterizer command reading HTML on stdin, writing PNG to stdout")
	scale := flag.Float64("scale", 0, "capture output scale")
	settleMS := flag.Int("settle", -1, "settle delay in milliseconds")
	reportPath := flag.String("report", "", "write an HTML batch report to this path")
	yes := flag.Bool("yes", false, "overwrite existing output without asking")
	verbose := flag.Bool("verbose", false, "verbose logging")
	flag.Parse()

	if *templatePath == "" {
		log.Fatal("a -template bundle is required")
	}

	cfg := loadConfig(*configPath)
	if *output != "" {
		cfg.Output = *output
	}
	if cfg.Output == "" {
		cfg.Output = "banners.zip"
	}
	if *rasterizer != "" {
		cfg.Rasterizer = *rasterizer
	}
	if *scale > 0 {
		cfg.Scale = *scale
	}
	if *settleMS >= 0 {
		cfg.SettleMS = *settleMS
	}
	if cfg.Rasterizer == "" {
		log.Fatal("a rasterizer command is required (flag -rasterizer or config key rasterizer)")
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	upload, err := os.ReadFile(*templatePath)
	if err != nil {
		log.Fatalf("read template bundle: %v", err)
	}
	project, err := bannergen.OpenUpload(upload)
	if err != nil {
		log.Fatalf("open upload: %v", err)
	}
	if project.Batch.Len() == 0 {
		log.Fatal("upload carries no data records")
	}

	if !*yes && fileExists(cfg.Output) {
		overwrite := false
		prompt := &survey.Confirm{Message: fmt.Sprintf("%s exists, overwrite?", cfg.Output)}
		if err := survey.AskOne(prompt, &overwrite); err != nil || !overwrite {
			fmt.Println("aborted")
			return
		}
	}

	options := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithRasterizer(execRasterizer(cfg.Rasterizer)),
		orchestrator.WithProgress(func(ev orchestrator.ProgressEvent) {
			status := "ok"
			if ev.Err != nil {
				status = "failed"
			}
			fmt.Printf("[%d/%d] %s %s\n", ev.Completed, ev.Total, ev.Name, status)
		}),
	}
	if cfg.Scale > 0 {
		options = append(options, orchestrator.WithScale(cfg.Scale))
	}
	if cfg.SettleMS >= 0 {
		options = append(options, orchestrator.WithSettleDelay(time.Duration(cfg.SettleMS)*time.Millisecond))
	}

	outFile, err := os.Create(cfg.Output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer outFile.Close()

	summary, err := bannergen.GenerateArchive(context.Background(), project, nil, outFile, options...)
	if err != nil {
		log.Fatalf("batch failed: %v", err)
	}

	fmt.Printf("%d of %d records rendered into %s\n", summary.Succeeded, summary.Total, cfg.Output)

	if *reportPath != "" {
		writeReport(*reportPath, summary)
	}
}

func loadConfig(path string) config {
	var cfg config
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read config: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("parse config: %v", err)
	}
	return cfg
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// execRasterizer wraps an external command as the rasterization
// collaborator: markup on stdin, raster bytes on stdout. The scale is
// appended as a --scale argument.
func execRasterizer(command string) capture.Rasterizer {
	return capture.RasterizerFunc(func(ctx context.Context, markup []byte, opts capture.Options) ([]byte, error) {
		words, err := shellquote.Split(command)
		if err != nil {
			return nil, fmt.Errorf("rasterizer command: %w", err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("rasterizer command is empty")
		}
		if opts.Scale > 0 {
			words = append(words, fmt.Sprintf("--scale=%g", opts.Scale))
		}

		cmd := exec.CommandContext(ctx, words[0], words[1:]...)
		cmd.Stdin = bytes.NewReader(markup)
		var out, errBuf bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &errBuf
		if err := cmd.Run(); err != nil {
			detail := strings.TrimSpace(errBuf.String())
			if detail != "" {
				return nil, fmt.Errorf("rasterizer: %v: %s", err, detail)
			}
			return nil, fmt.Errorf("rasterizer: %w", err)
		}
		return out.Bytes(), nil
	})
}

func writeReport(path string, summary orchestrator.Summary) {
	renderer, err := report.New()
	if err != nil {
		log.Printf("report: %v", err)
		return
	}
	html, err := renderer.Render(summary)
	if err != nil {
		log.Printf("report: %v", err)
		return
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		log.Printf("write report: %v", err)
		return
	}
	fmt.Printf("report written to %s\n", path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
