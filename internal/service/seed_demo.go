// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/ocms-pages/internal/model"
)

type demoPage struct {
	id       string
	filename string
	status   model.Status
	sections []model.Section
	body     string
	link     string
}

// SeedDemo creates the demo pages in every supported language. Pages that
// already exist are left untouched, so it is safe to call on every start.
func (m *PageManager) SeedDemo(ctx context.Context) error {
	codes := m.langs.Codes()
	m.logger.InfoContext(ctx, "seeding demo pages", "languages", codes)

	for _, lang := range codes {
		for _, dp := range demoPages() {
			arg := CreatePageParams{
				Language: lang,
				PageID:   dp.id,
				Sections: dp.sections,
				Status:   dp.status,
				Link:     dp.link,
			}
			if dp.link == "" {
				arg.Upload = &Upload{
					Filename: dp.filename,
					Size:     int64(len(dp.body)),
					Body:     strings.NewReader(dp.body),
				}
			}
			_, err := m.Create(ctx, arg)
			if errors.Is(err, ErrAlreadyExists) {
				m.logger.DebugContext(ctx, "demo page already exists", "language", lang, "page_id", dp.id)
				continue
			}
			if err != nil {
				return fmt.Errorf("creating demo page %s/%s: %w", lang, dp.id, err)
			}
		}
	}
	return nil
}

// demoPages covers every section and every status; editor-guide is a link.
func demoPages() []demoPage {
	return []demoPage{
		{
			id:       "welcome",
			filename: "welcome.html",
			status:   model.StatusPublic,
			sections: []model.Section{model.SectionTop},
			body:     "<h1>Welcome</h1><p>This catalogue publishes open geographic data.</p>",
		},
		{
			id:       "contact",
			filename: "contact.html",
			status:   model.StatusPublic,
			sections: []model.Section{model.SectionHeader},
			body:     "<p>Write to the catalogue team at <a href=\"mailto:sdi@example.org\">sdi@example.org</a>.</p>",
		},
		{
			id:       "about",
			filename: "about.md",
			status:   model.StatusPublic,
			sections: []model.Section{model.SectionFooter},
			body:     "# About\n\nMaintained by the spatial data infrastructure team.\n",
		},
		{
			id:       "register",
			filename: "register.txt",
			status:   model.StatusPublicOnly,
			sections: []model.Section{model.SectionMenu},
			body:     "Create an account to harvest and edit metadata records.",
		},
		{
			id:       "editor-guide",
			status:   model.StatusPrivate,
			sections: []model.Section{model.SectionSubmenu},
			link:     "https://docs.example.org/editor-guide",
		},
		{
			id:       "terms",
			filename: "terms.md",
			status:   model.StatusDraft,
			sections: []model.Section{model.SectionAll},
			body:     "# Terms of use\n\nData is published under an open licence.\n",
		},
		{
			id:       "maintenance",
			filename: "maintenance.txt",
			status:   model.StatusHidden,
			sections: []model.Section{model.SectionDraft},
			body:     "Scheduled maintenance notes.",
		},
	}
}
