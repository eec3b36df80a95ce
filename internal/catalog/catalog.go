// Package catalog loads the menu catalog and renders it into prompt text.
//
// DESIGN: The catalog lives in three CSV files (menus.csv, menu_items.csv,
// styles.csv). Parsing is forgiving: a missing or malformed file degrades
// to an empty section with a warning, never a startup failure. All derived
// text (system prompt, summary guides) is built once and cached.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Catalog holds the parsed menu data and caches rendered prompt text.
type Catalog struct {
	menus     []map[string]string
	menuItems []map[string]string
	styles    []map[string]string

	assumedDate string

	promptOnce sync.Once
	prompt     string

	guideOnce  sync.Once
	itemGuide  string
	styleGuide string
}

// Load reads the catalog CSVs from dir. assumedDate is interpolated into
// the base system prompt so the model resolves relative dates against it.
func Load(dir, assumedDate string) *Catalog {
	return &Catalog{
		menus:       parseCSV(filepath.Join(dir, "menus.csv")),
		menuItems:   parseCSV(filepath.Join(dir, "menu_items.csv")),
		styles:      parseCSV(filepath.Join(dir, "styles.csv")),
		assumedDate: assumedDate,
	}
}

// parseCSV reads a CSV with a header row into one map per record. Rows
// whose cells are all empty are dropped.
func parseCSV(path string) []map[string]string {
	f, err := os.Open(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("catalog file missing, section will be empty")
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("catalog file has no header, section will be empty")
		return nil
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("failed to parse catalog file")
			return rows
		}
		row := make(map[string]string, len(header))
		empty := true
		for i, key := range header {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[strings.TrimSpace(key)] = value
			if value != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// normalizeMenuKey collapses whitespace and case so menu names/ids can be
// matched across files.
func normalizeMenuKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// menuKey returns the normalized key from the first non-empty candidate
// field of the entry.
func menuKey(entry map[string]string, candidates ...string) string {
	for _, field := range candidates {
		if raw := entry[field]; raw != "" {
			if key := normalizeMenuKey(raw); key != "" {
				return key
			}
		}
	}
	return ""
}

// SystemPrompt returns the full chat system prompt: the base instructions
// followed by the formatted menu, style, and price sections.
func (c *Catalog) SystemPrompt() string {
	c.promptOnce.Do(func() {
		c.prompt = c.BasePrompt() + c.formatSections()
	})
	return c.prompt
}

// BasePrompt returns the instruction portion of the system prompt, without
// catalog sections. The output sanitizer uses it to recognize echoed
// prompt text.
func (c *Catalog) BasePrompt() string {
	return fmt.Sprintf(basePromptTemplate, c.assumedDate)
}

func (c *Catalog) formatSections() string {
	components := make(map[string][]map[string]string)
	itemOrder := []string{}
	itemCatalog := make(map[string]map[string]string)

	for _, item := range c.menuItems {
		if key := menuKey(item, "menu_name", "menu", "menu_id"); key != "" {
			components[key] = append(components[key], item)
		}
		name := item["item_name"]
		lowered := strings.ToLower(name)
		if name != "" {
			if _, seen := itemCatalog[lowered]; !seen {
				itemCatalog[lowered] = item
				itemOrder = append(itemOrder, lowered)
			}
		}
	}

	var menuLines []string
	for _, menu := range c.menus {
		name := menu["name"]
		line := "- " + name
		if servings := menu["servings"]; servings != "" {
			line += fmt.Sprintf(" / 기준 %s인분", servings)
		}
		if description := menu["description"]; description != "" {
			line += ": " + description
		}
		menuLines = append(menuLines, line)

		for _, component := range components[normalizeMenuKey(name)] {
			qty := component["default_qty"]
			if qty == "" {
				qty = "1"
			}
			menuLines = append(menuLines, fmt.Sprintf("  · %s x %s", component["item_name"], qty))
		}
	}
	if len(menuLines) == 0 {
		menuLines = append(menuLines, "- 등록된 메뉴 정보가 없습니다.")
	}

	var styleLines []string
	for _, style := range c.styles {
		description := style["description"]
		if description == "" {
			description = "설명 없음"
		}
		line := fmt.Sprintf("- %s: %s", style["name"], description)
		if notes := style["notes"]; notes != "" {
			line += fmt.Sprintf(" (%s)", notes)
		}
		styleLines = append(styleLines, line)
	}
	if len(styleLines) == 0 {
		styleLines = append(styleLines, "- 등록된 스타일 정보가 없습니다.")
	}

	var priceLines []string
	for _, key := range itemOrder {
		item := itemCatalog[key]
		if item["unit_price"] == "" {
			continue
		}
		priceLines = append(priceLines, fmt.Sprintf("- %s: %s원", item["item_name"], item["unit_price"]))
	}
	if len(priceLines) == 0 {
		priceLines = append(priceLines, "- 단품 가격 정보가 없습니다.")
	}

	return fmt.Sprintf(
		"\n\n[메뉴 목록]\n%s\n\n[서빙 스타일]\n%s\n\n[단품 가격]\n%s\n\n가격은 고객이 요청할 때만 전달하고, 계산 시 신중하게 검증하세요.",
		strings.Join(menuLines, "\n"),
		strings.Join(styleLines, "\n"),
		strings.Join(priceLines, "\n"),
	)
}
