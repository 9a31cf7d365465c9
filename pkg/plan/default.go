package plan

// Variable set by the theme toggle step; dark-mode steps run only when it is true.
const ThemeToggledVariable = "theme_toggled"

// DefaultPlan returns the built-in verification plan for the portfolio page:
// LinkedIn link text, meta tags, and experience-section screenshots in both themes.
func DefaultPlan() *Plan {
	return &Plan{
		Metadata: Metadata{
			ID:      "portfolio-smoke",
			Title:   "Portfolio page smoke check",
			Version: ExpectedVersion,
			Tags:    []string{"portfolio", "smoke"},
		},
		Target: Target{
			Document:  "index.html",
			OutputDir: "verification",
		},
		Setup: []Step{
			{
				DSL:    "Open index.html",
				ID:     "load",
				Action: &Action{Type: "load_document"},
			},
		},
		Checks: []Step{
			{
				DSL: "LinkedIn link in the contact section reads 'LinkedIn Profile'",
				ID:  "linkedin_text",
				Check: &Check{
					Type:           "element_text_contains",
					Selector:       "#contact .contact-info-container a[href*='linkedin.com']",
					Contains:       "LinkedIn Profile",
					Label:          "LinkedIn Text in Contact Section",
					PassMessage:    "LinkedIn text updated successfully.",
					FailMessage:    "LinkedIn text expected 'LinkedIn Profile'",
					MissingMessage: "Could not find LinkedIn link in contact section.",
				},
			},
			{
				DSL: "Meta description tag exists",
				ID:  "meta_description",
				Check: &Check{
					Type:           "element_exists",
					Selector:       `meta[name="description"]`,
					Attribute:      "content",
					Label:          "Meta Description",
					PassMessage:    "Meta Description tag exists.",
					MissingMessage: "Meta Description tag missing.",
				},
			},
			{
				DSL: "Meta keywords tag exists",
				ID:  "meta_keywords",
				Check: &Check{
					Type:           "element_exists",
					Selector:       `meta[name="keywords"]`,
					Attribute:      "content",
					Label:          "Meta Keywords",
					PassMessage:    "Meta Keywords tag exists.",
					MissingMessage: "Meta Keywords tag missing.",
				},
			},
		},
		Captures: []Step{
			{
				DSL:    "Scroll experience section into view",
				Action: &Action{Type: "scroll_into_view", Selector: "#experience"},
			},
			{
				DSL:    "Let animations settle",
				Action: &Action{Type: "wait", Duration: "1s"},
			},
			{
				DSL:    "Capture light mode",
				ID:     "experience_light",
				Action: &Action{Type: "screenshot", Path: "experience_light.png"},
			},
			{
				DSL: "Toggle dark mode",
				ID:  "theme_toggle",
				Action: &Action{
					Type:           "click_first_visible",
					Candidates:     []string{"#theme-btn-desktop", "#theme-btn-mobile"},
					TargetVariable: ThemeToggledVariable,
					Warning:        "Theme button not visible, skipping Dark Mode screenshot.",
				},
			},
			{
				DSL:    "Wait for theme transition",
				If:     ThemeToggledVariable,
				Action: &Action{Type: "wait", Duration: "1s"},
			},
			{
				DSL:    "Scroll experience section into view again",
				If:     ThemeToggledVariable,
				Action: &Action{Type: "scroll_into_view", Selector: "#experience"},
			},
			{
				DSL:    "Let layout settle",
				If:     ThemeToggledVariable,
				Action: &Action{Type: "wait", Duration: "500ms"},
			},
			{
				DSL:    "Capture dark mode",
				ID:     "experience_dark",
				If:     ThemeToggledVariable,
				Action: &Action{Type: "screenshot", Path: "experience_dark.png"},
			},
		},
	}
}
