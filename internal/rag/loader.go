package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HammadAli08/Portfolio-backend/internal/logger"
	"github.com/HammadAli08/Portfolio-backend/models"
)

// DocumentType tags every portfolio vector in the index.
const DocumentType = "portfolio_data"

// LoadDocuments reads every .json profile record under dir and flattens each
// into one Document. A malformed file is logged and skipped; a missing
// directory is a configuration error.
func LoadDocuments(dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dir, err)
	}

	var documents []models.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn("Skipping unreadable profile file", "file", entry.Name(), "error", err)
			continue
		}

		var record any
		if err := json.Unmarshal(raw, &record); err != nil {
			logger.Warn("Skipping malformed profile file", "file", entry.Name(), "error", err)
			continue
		}

		content := flattenRecord(record)
		if content == "" {
			// No recognized section produced text, keep the raw record
			pretty, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				logger.Warn("Skipping unserializable profile file", "file", entry.Name(), "error", err)
				continue
			}
			content = string(pretty)
		}

		documents = append(documents, models.Document{
			Content: content,
			Metadata: models.DocumentMetadata{
				Source: entry.Name(),
				Type:   DocumentType,
				Name:   displayName(record, entry.Name()),
			},
		})
		logger.Debug("Loaded profile file", "file", entry.Name(), "chars", len(content))
	}

	return documents, nil
}

// flattenRecord turns a profile record into readable text. Each recognized
// section contributes its own lines; an empty result means none matched.
func flattenRecord(record any) string {
	data, ok := record.(map[string]any)
	if !ok {
		return ""
	}

	var parts []string

	if info, ok := data["personal_profile"].(map[string]any); ok {
		contact, _ := info["contact"].(map[string]any)
		parts = append(parts,
			"Name: "+stringField(info, "name"),
			"Title: "+stringField(info, "title"),
			"Contact: "+stringField(contact, "email"),
			"Location: "+stringField(info, "location"),
			"About: "+stringField(info, "summary"),
		)
	}

	if entries, ok := data["professional_experience"].([]any); ok {
		parts = append(parts, "\nProfessional Experience:")
		for _, e := range entries {
			exp, ok := e.(map[string]any)
			if !ok {
				continue
			}
			role := stringField(exp, "role")
			company := stringField(exp, "company")
			if role == "" || company == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("- %s at %s", role, company))
			if achievements, ok := exp["achievements"].([]any); ok {
				for _, a := range achievements {
					if s, ok := a.(string); ok {
						parts = append(parts, "  * "+s)
					}
				}
			}
		}
	}

	if projects, ok := data["projects"].([]any); ok {
		parts = append(parts, "\nProjects:")
		for _, p := range projects {
			proj, ok := p.(map[string]any)
			if !ok {
				continue
			}
			name := stringField(proj, "name")
			if name == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("- %s: %s", name, stringField(proj, "description")))
		}
	}

	if skills, ok := data["skills"].(map[string]any); ok {
		parts = append(parts, "\nSkills:")
		categories := make([]string, 0, len(skills))
		for category := range skills {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			items, ok := skills[category].([]any)
			if !ok {
				continue
			}
			names := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					names = append(names, s)
				}
			}
			parts = append(parts, fmt.Sprintf("- %s: %s", category, strings.Join(names, ", ")))
		}
	}

	return strings.Join(parts, "\n")
}

func displayName(record any, filename string) string {
	if data, ok := record.(map[string]any); ok {
		if name, ok := data["name"].(string); ok && name != "" {
			return name
		}
	}
	return strings.TrimSuffix(filename, ".json")
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
