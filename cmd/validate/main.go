// Command validate scores a labeled observation CSV against a model artifact
// and reports accuracy and the confusion counts. It loads the artifact through
// the same path the service uses, so a passing run means the service can serve
// that artifact.
//
// The CSV must have a header row with the nine feature columns plus a "label"
// column holding the expected class (0 or 1).
//
// Usage:
//
//	go run ./cmd/validate -model models/cyclone_model.json -csv data/holdout.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
	"github.com/couchcryptid/cyclone-inference-service/internal/model"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	modelPath := flag.String("model", model.DefaultArtifactPath, "model artifact to validate")
	csvPath := flag.String("csv", "", "labeled observation CSV")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv")
	}

	cache := model.NewCache(*modelPath)
	clf, err := cache.Load()
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	info, err := cache.Describe()
	if err != nil {
		return err
	}
	log.Printf("model: %s (kind=%s, probabilistic=%t)", info.Path, info.Kind, info.Probabilistic)

	rows, labels, err := readObservations(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("observations: %d", len(rows))

	// Confusion counts indexed [expected][predicted].
	var confusion [2][2]int
	for i, row := range rows {
		class, err := clf.PredictClass(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		confusion[labels[i]][class]++
	}

	correct := confusion[0][0] + confusion[1][1]
	fmt.Printf("accuracy: %.4f (%d/%d)\n", float64(correct)/float64(len(rows)), correct, len(rows))
	fmt.Printf("confusion: tn=%d fp=%d fn=%d tp=%d\n",
		confusion[0][0], confusion[0][1], confusion[1][0], confusion[1][1])
	return nil
}

// readObservations parses the CSV into feature rows in model order plus the
// expected labels. Column order in the file does not matter; the header names
// do.
func readObservations(path string) ([][]float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range records[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, name := range domain.FeatureOrder {
		if _, ok := colIdx[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}
	labelIdx, ok := colIdx["label"]
	if !ok {
		return nil, nil, fmt.Errorf("missing column %q", "label")
	}

	rows := make([][]float64, 0, len(records)-1)
	labels := make([]int, 0, len(records)-1)
	for n, rec := range records[1:] {
		row := make([]float64, domain.FeatureCount)
		for i, name := range domain.FeatureOrder {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[colIdx[name]]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d, column %s: %w", n+1, name, err)
			}
			row[i] = v
		}
		label, err := strconv.Atoi(strings.TrimSpace(rec[labelIdx]))
		if err != nil || (label != domain.ClassNoCyclone && label != domain.ClassCyclone) {
			return nil, nil, fmt.Errorf("row %d: label must be 0 or 1", n+1)
		}
		rows = append(rows, row)
		labels = append(labels, label)
	}
	return rows, labels, nil
}
