package models

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const receiptExt = ".yaml"

// Receipt records the outcome of a ride that ended in agreement.
type Receipt struct {
	ID         string     `yaml:"id"`
	At         time.Time  `yaml:"at"`
	From       string     `yaml:"from"`
	To         string     `yaml:"to"`
	Distance   float64    `yaml:"distance"`
	Conditions Conditions `yaml:"conditions"`
	Quoted     int        `yaml:"quoted"`
	Final      int        `yaml:"final"`
	Minimum    int        `yaml:"minimum"`
	Rounds     int        `yaml:"rounds"`
	Score      int        `yaml:"score"`
	Transcript []string   `yaml:"transcript,omitempty"`
}

// Save writes the receipt into dir, creating it if needed, and returns the file path.
// A receipt without an ID is given a fresh one.
func (r *Receipt) Save(dir string) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, r.ID+receiptExt)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func LoadReceipt(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Receipt
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse receipt %s: %w", path, err)
	}
	return &r, nil
}

// ListReceipts loads every receipt in dir, oldest first. A missing dir is not an error.
func ListReceipts(dir string) ([]Receipt, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []Receipt{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var receipts []Receipt
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), receiptExt) {
			continue
		}
		r, err := LoadReceipt(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].At.Before(receipts[j].At)
	})
	return receipts, nil
}
