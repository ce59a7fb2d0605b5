package testsupport

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/logging"
)

func TestLoadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "city.json")
	if err := os.WriteFile(testFile, []byte(`{"id": 3, "name": "Luxor"}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var city experience.City
	LoadFixtureJSON(t, testFile, &city)

	if city.ID != 3 || city.Name != "Luxor" {
		t.Errorf("unexpected city %+v", city)
	}
}

func TestCompareWithGoldenJSON_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "city.json")
	city := experience.City{ID: 1, Name: "Cairo"}

	CompareWithGoldenJSON(t, path, city)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected golden file to be created: %v", err)
	}

	CompareWithGoldenJSON(t, path, city)
}

func TestPaths(t *testing.T) {
	if got := FixturePath("list.json"); got != filepath.Join("testdata", "list.json") {
		t.Errorf("unexpected fixture path %q", got)
	}
	if got := GoldenPath("list.json"); got != filepath.Join("testdata", "golden", "list.json") {
		t.Errorf("unexpected golden path %q", got)
	}
}

func TestNewExperience_Options(t *testing.T) {
	e := NewExperience("7", Recommended(), Liked(), WithLikes(3), InCity(nil), WithTour("https://tour"))

	if e.ID != "7" || !e.IsRecommended || !e.IsLiked || e.LikesCount != 3 {
		t.Errorf("options not applied: %+v", e)
	}
	if e.City != nil {
		t.Errorf("expected nil city")
	}
	if !e.HasTour() {
		t.Errorf("expected tour")
	}
}

func TestRecordingLogger_SharesEntriesWithChildren(t *testing.T) {
	root := NewRecordingLogger()
	child := root.WithFields(logging.Fields{"component": "test"})

	child.Warn("child warning", logging.Fields{"id": "1"})
	root.Error("root error", errors.New("boom"), nil)

	entries := root.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "test" || entries[0].Fields["id"] != "1" {
		t.Errorf("unexpected fields %+v", entries[0].Fields)
	}
	if !root.Has("error", "root error") {
		t.Errorf("expected error entry")
	}
}
