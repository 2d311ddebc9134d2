// Command genmodel writes a small decision-tree model artifact for local
// development and testing. The tree is hand-built from the same thresholds the
// training notebook reports as its top splits, so the service can run end to
// end without the real ONNX export.
//
// Usage:
//
//	go run ./cmd/genmodel -out models/cyclone_model.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
	"github.com/couchcryptid/cyclone-inference-service/internal/model"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "models/cyclone_model.json", "output path for the decision-tree artifact")
	flag.Parse()

	// Node 0 splits on pressure, the low side on sea surface temperature, the
	// high side on disturbance history. Indices follow domain.FeatureOrder.
	nodes := []model.TreeNode{
		{Feature: 1, Threshold: 1000.0, Left: 1, Right: 2},
		{Feature: 0, Threshold: 27.5, Left: 3, Right: 4},
		{Feature: 8, Threshold: 0.5, Left: 5, Right: 6},
		{Leaf: true, Class: domain.ClassNoCyclone},
		{Leaf: true, Class: domain.ClassCyclone},
		{Leaf: true, Class: domain.ClassNoCyclone},
		{Leaf: true, Class: domain.ClassCyclone},
	}

	if _, err := model.NewTreeClassifier(nodes); err != nil {
		return fmt.Errorf("built an invalid tree: %w", err)
	}

	if err := writeJSON(*out, nodes); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	log.Printf("wrote model artifact: %s", *out)

	return verify(*out)
}

// verify loads the artifact back through the same path the service uses and
// scores one row per class.
func verify(path string) error {
	cache := model.NewCache(path)
	clf, err := cache.Load()
	if err != nil {
		return fmt.Errorf("reloading artifact: %w", err)
	}

	samples := []struct {
		name string
		row  domain.FeatureVector
		want int
	}{
		{
			name: "warm low-pressure basin",
			row: domain.FeatureVector{
				SeaSurfaceTemp: 29.5, Pressure: 995, Humidity: 82, WindShear: 6.5,
				Vorticity: 3.1e-5, Latitude: 14.2, OceanDepth: 3200, Proximity: 120, Disturbance: 1,
			},
			want: domain.ClassCyclone,
		},
		{
			name: "calm high-pressure basin",
			row: domain.FeatureVector{
				SeaSurfaceTemp: 22, Pressure: 1015, Humidity: 55, WindShear: 18,
				Vorticity: 0.4e-5, Latitude: 35, OceanDepth: 1500, Proximity: 40, Disturbance: 0,
			},
			want: domain.ClassNoCyclone,
		},
	}
	for _, s := range samples {
		class, err := clf.PredictClass(s.row.Values())
		if err != nil {
			return fmt.Errorf("scoring %s: %w", s.name, err)
		}
		if class != s.want {
			return fmt.Errorf("scoring %s: got class %d, want %d", s.name, class, s.want)
		}
		log.Printf("%s: class=%d", s.name, class)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
