// Command parity_check compares the directory JSON API against the teacher backend it fronts.
// It exits non-zero when a record is missing, extra, or differs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/teacher-directory/internal/models"
)

type envelope struct {
	Data       []models.Teacher   `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

type mismatch struct {
	ID     string
	Reason string
}

func main() {
	var (
		apiBase      string
		upstreamBase string
		pageSize     int
		timeout      time.Duration
	)

	flag.StringVar(&apiBase, "api-base", "http://localhost:8080", "Directory service base URL")
	flag.StringVar(&upstreamBase, "upstream-base", "https://687212ff76a5723aacd38af5.mockapi.io", "Teacher backend base URL")
	flag.IntVar(&pageSize, "limit", 50, "Page size used when walking the API")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	upstream, err := fetchUpstream(client, upstreamBase)
	if err != nil {
		log.Fatalf("failed to fetch backend: %v", err)
	}
	served, err := fetchAPI(client, apiBase, pageSize)
	if err != nil {
		log.Fatalf("failed to walk api: %v", err)
	}

	diffs := compare(upstream, served)
	printReport(len(upstream), len(served), diffs)
	if len(diffs) > 0 {
		os.Exit(1)
	}
}

func fetchUpstream(client *http.Client, base string) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := getJSON(client, strings.TrimRight(base, "/")+"/teacher", &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

func fetchAPI(client *http.Client, base string, limit int) ([]models.Teacher, error) {
	var out []models.Teacher
	for page := 1; ; page++ {
		var env envelope
		url := fmt.Sprintf("%s/api/v1/teachers?page=%d&limit=%d", strings.TrimRight(base, "/"), page, limit)
		if err := getJSON(client, url, &env); err != nil {
			return nil, err
		}
		out = append(out, env.Data...)
		if env.Pagination == nil || page >= env.Pagination.TotalPages {
			return out, nil
		}
	}
}

func getJSON(client *http.Client, url string, dest interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// compare matches records by id and order. Fees are compared on their wire text.
func compare(upstream, served []models.Teacher) []mismatch {
	var diffs []mismatch
	byID := make(map[string]models.Teacher, len(served))
	for _, t := range served {
		byID[t.ID] = t
	}

	for i, want := range upstream {
		got, ok := byID[want.ID]
		if !ok {
			diffs = append(diffs, mismatch{ID: want.ID, Reason: "missing from api"})
			continue
		}
		delete(byID, want.ID)
		if reason := recordDiff(want, got); reason != "" {
			diffs = append(diffs, mismatch{ID: want.ID, Reason: reason})
			continue
		}
		if i < len(served) && served[i].ID != want.ID {
			diffs = append(diffs, mismatch{ID: want.ID, Reason: fmt.Sprintf("out of order: position %d holds %s", i, served[i].ID)})
		}
	}
	for id := range byID {
		diffs = append(diffs, mismatch{ID: id, Reason: "not present in backend"})
	}
	return diffs
}

func recordDiff(want, got models.Teacher) string {
	switch {
	case want.Name != got.Name:
		return fmt.Sprintf("name %q != %q", got.Name, want.Name)
	case want.Subject != got.Subject:
		return fmt.Sprintf("subject %q != %q", got.Subject, want.Subject)
	case want.Location != got.Location:
		return fmt.Sprintf("location %q != %q", got.Location, want.Location)
	case want.Rating != got.Rating:
		return fmt.Sprintf("rating %s != %s", got.Rating, want.Rating)
	case want.Fee.String() != got.Fee.String():
		return fmt.Sprintf("fee %q != %q", got.Fee, want.Fee)
	}
	return ""
}

func printReport(upstream, served int, diffs []mismatch) {
	fmt.Println("Parity Report")
	fmt.Println("=============")
	fmt.Printf("Backend records: %d | API records: %d\n", upstream, served)
	for _, d := range diffs {
		fmt.Printf("[DIFF] %s: %s\n", d.ID, d.Reason)
	}
	fmt.Printf("Differences: %d\n", len(diffs))
}
