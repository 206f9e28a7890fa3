// plateeval runs a license plate reading evaluation against a local image
// dataset and an OpenAI-compatible vision model endpoint, without needing the
// server, database, or object storage.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"license-plate-eval-platform/internal/coreengine/evaluationengine"
	"license-plate-eval-platform/internal/coreengine/vendoradapters"
	"license-plate-eval-platform/internal/reporting"
)

// cliConfig holds all run settings. Values can come from a YAML config file,
// with command line flags taking precedence.
type cliConfig struct {
	Dataset     string `yaml:"dataset"`
	GroundTruth string `yaml:"ground_truth"`
	Output      string `yaml:"output"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	DelayMs     int    `yaml:"delay_ms"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

func main() {
	cfg := cliConfig{
		Output:  "ocr_results.csv",
		BaseURL: "http://localhost:1234/v1",
		APIKey:  "lm-studio",
		Model:   "llava-v1.6-mistral-7b",
		DelayMs: 500,
	}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "plateeval",
		Short: "Evaluate license plate reading accuracy of a vision model on an image dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fileCfg, err := loadConfigFile(configPath)
				if err != nil {
					return err
				}
				mergeConfig(&cfg, fileCfg, cmd)
			}
			if cfg.Dataset == "" {
				return errors.New("--dataset is required (or set 'dataset' in the config file)")
			}
			cmd.SilenceUsage = true
			return run(cfg)
		},
	}

	rootCmd.Flags().StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "Path to the directory of plate images")
	rootCmd.Flags().StringVar(&cfg.GroundTruth, "ground-truth", cfg.GroundTruth, "Path to the ground truth CSV file (columns: image, ground_truth)")
	rootCmd.Flags().StringVar(&cfg.Output, "output", cfg.Output, "Path of the results CSV to write")
	rootCmd.Flags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Base URL of the OpenAI-compatible endpoint")
	rootCmd.Flags().StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key for the endpoint (LM Studio ignores it)")
	rootCmd.Flags().StringVar(&cfg.Model, "model", cfg.Model, "Model name to request")
	rootCmd.Flags().IntVar(&cfg.DelayMs, "delay", cfg.DelayMs, "Minimum delay between requests in milliseconds")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfigFile(path string) (cliConfig, error) {
	var fileCfg cliConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fileCfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fileCfg, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return fileCfg, nil
}

// mergeConfig applies file values for every setting whose flag was not set
// explicitly on the command line.
func mergeConfig(cfg *cliConfig, fileCfg cliConfig, cmd *cobra.Command) {
	if !cmd.Flags().Changed("dataset") && fileCfg.Dataset != "" {
		cfg.Dataset = fileCfg.Dataset
	}
	if !cmd.Flags().Changed("ground-truth") && fileCfg.GroundTruth != "" {
		cfg.GroundTruth = fileCfg.GroundTruth
	}
	if !cmd.Flags().Changed("output") && fileCfg.Output != "" {
		cfg.Output = fileCfg.Output
	}
	if !cmd.Flags().Changed("base-url") && fileCfg.BaseURL != "" {
		cfg.BaseURL = fileCfg.BaseURL
	}
	if !cmd.Flags().Changed("api-key") && fileCfg.APIKey != "" {
		cfg.APIKey = fileCfg.APIKey
	}
	if !cmd.Flags().Changed("model") && fileCfg.Model != "" {
		cfg.Model = fileCfg.Model
	}
	if !cmd.Flags().Changed("delay") && fileCfg.DelayMs != 0 {
		cfg.DelayMs = fileCfg.DelayMs
	}
}

func run(cfg cliConfig) error {
	fmt.Println("Starting License Plate OCR evaluation...")
	fmt.Printf("Dataset Path: %s\n", cfg.Dataset)
	fmt.Printf("Ground Truth File: %s\n", cfg.GroundTruth)
	fmt.Printf("Model: %s\n", cfg.Model)
	fmt.Printf("Endpoint: %s\n", cfg.BaseURL)
	fmt.Println(strings.Repeat("-", 60))

	if _, err := os.Stat(cfg.Dataset); err != nil {
		return fmt.Errorf("dataset path '%s' does not exist", cfg.Dataset)
	}

	imageFiles, err := collectImages(cfg.Dataset)
	if err != nil {
		return err
	}
	if len(imageFiles) == 0 {
		return fmt.Errorf("no image files found in '%s'", cfg.Dataset)
	}
	fmt.Printf("Found %d image files\n", len(imageFiles))

	groundTruth := loadGroundTruth(cfg.GroundTruth)

	items := make([]evaluationengine.SourceItem, 0, len(imageFiles))
	for _, name := range imageFiles {
		items = append(items, evaluationengine.SourceItem{
			ID:        name,
			ImageRef:  name,
			Reference: groundTruth[name],
		})
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	client := openai.NewClientWithConfig(clientConfig)

	predict := func(ctx context.Context, imageRef string) (string, error) {
		fmt.Printf("Processing: %s\n", imageRef)
		imageBytes, err := os.ReadFile(filepath.Join(cfg.Dataset, imageRef))
		if err != nil {
			return "", fmt.Errorf("failed to read image file: %w", err)
		}
		text, _, err := vendoradapters.PredictPlateFromDataURL(ctx, client, cfg.Model,
			vendoradapters.EncodeImageDataURL(imageRef, imageBytes))
		return text, err
	}

	evaluator := evaluationengine.NewEvaluator(predict, time.Duration(cfg.DelayMs)*time.Millisecond)
	results, err := evaluator.EvaluateBatch(context.Background(), items)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	for _, res := range results {
		fmt.Printf("Image: %s\n", res.ImageRef)
		fmt.Printf("Ground Truth: %s\n", res.Reference)
		fmt.Printf("Prediction: %s\n", res.Candidate)
		fmt.Printf("CER Score: %.4f\n", res.ErrorRate)
		fmt.Println(strings.Repeat("-", 50))
	}

	if err := writeResultsCSV(cfg.Output, results); err != nil {
		return err
	}
	fmt.Printf("Results saved to %s\n", cfg.Output)

	if err := reporting.WriteSummary(os.Stdout, evaluationengine.Summarize(results)); err != nil {
		return err
	}
	return nil
}

func collectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory '%s': %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// loadGroundTruth reads the ground truth CSV, mapping image filename to plate
// text. A missing or unreadable file is not fatal; the run continues with no
// references.
func loadGroundTruth(path string) map[string]string {
	groundTruth := make(map[string]string)
	if path == "" {
		return groundTruth
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("Error reading ground truth file: %v", err)
		log.Println("Continuing without ground truth...")
		return groundTruth
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		log.Printf("Error reading ground truth file: %v", err)
		log.Println("Continuing without ground truth...")
		return groundTruth
	}

	imageIdx, gtIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "image":
			imageIdx = i
		case "ground_truth":
			gtIdx = i
		}
	}
	if imageIdx < 0 || gtIdx < 0 {
		log.Printf("Ground truth file '%s' is missing 'image' or 'ground_truth' columns. Continuing without ground truth...", path)
		return groundTruth
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Skipping malformed ground truth row: %v", err)
			continue
		}
		if imageIdx < len(record) && gtIdx < len(record) {
			groundTruth[record[imageIdx]] = strings.TrimSpace(record[gtIdx])
		}
	}
	return groundTruth
}

func writeResultsCSV(path string, results []evaluationengine.ItemResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", path, err)
	}
	defer f.Close()

	if err := reporting.WriteCSV(f, results); err != nil {
		return fmt.Errorf("failed to write results to '%s': %w", path, err)
	}
	return nil
}
