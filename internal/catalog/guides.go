package catalog

import (
	"fmt"
	"strings"
)

// MenuItemGuide returns reference text for the summary prompt describing
// each menu's component set, so extracted menuItems use in-catalog names.
func (c *Catalog) MenuItemGuide() string {
	c.buildGuides()
	return c.itemGuide
}

// StyleGuide returns reference text listing the serving style names, so
// extracted menuStyle values stay in-catalog.
func (c *Catalog) StyleGuide() string {
	c.buildGuides()
	return c.styleGuide
}

func (c *Catalog) buildGuides() {
	c.guideOnce.Do(func() {
		c.itemGuide = c.renderItemGuide()
		c.styleGuide = c.renderStyleGuide()
	})
}

func (c *Catalog) renderItemGuide() string {
	// Group priced component names by menu. Non-food items (decorations,
	// napkins) carry no unit price and are not part of the order summary.
	componentsByMenu := make(map[string][]string)
	for _, item := range c.menuItems {
		if item["unit_price"] == "" {
			continue
		}
		key := menuKey(item, "menu_id", "menu_name", "menu")
		if key == "" {
			continue
		}
		componentsByMenu[key] = append(componentsByMenu[key], item["item_name"])
	}

	lines := []string{
		"For the menuItems line, describe final quantities per component using comma-separated `항목=수량` pairs. Reflect any changes the customer requested. Use these component sets:",
	}
	for _, menu := range c.menus {
		key := menuKey(menu, "menu_id", "name")
		if key == "" {
			continue
		}
		if components, ok := componentsByMenu[key]; ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", menu["name"], strings.Join(components, ", ")))
		}
	}
	lines = append(lines, "If multiple 세트가 함께 주문되면 각 세트에 맞는 항목을 모두 포함하고, 언급되지 않은 항목은 `항목=미확인`으로 남기세요.")

	return strings.Join(lines, "\n")
}

func (c *Catalog) renderStyleGuide() string {
	lines := []string{"Use one of these 서빙 스타일 이름(또는 null) for menuStyle:"}
	for _, style := range c.styles {
		name := style["name"]
		if name == "" {
			continue
		}
		description := style["description"]
		if description == "" {
			description = "설명 없음"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", name, description))
	}
	return strings.Join(lines, "\n")
}
