package export

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inbox-crm/internal/model"
	"github.com/sells-group/inbox-crm/pkg/notion"
)

// NotionResult counts what a Notion sync did.
type NotionResult struct {
	Created int
	Updated int
}

// SyncNotion upserts every deal into the Notion database keyed by the
// deal title: an existing page with the same title is updated in place,
// otherwise a new page is created.
func SyncNotion(ctx context.Context, c notion.Client, dbID string, contacts []model.Contact, deals []model.Deal) (NotionResult, error) {
	byID := make(map[string]model.Contact, len(contacts))
	for _, ct := range contacts {
		byID[ct.ID] = ct
	}

	var res NotionResult
	for _, d := range deals {
		props := buildDealProperties(d, byID[d.ContactID].Name)

		existing, err := notion.FindPageByTitle(ctx, c, dbID, "Name", d.Title)
		if err != nil {
			return res, eris.Wrap(err, "export: notion lookup")
		}

		if existing != nil {
			if _, err := c.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
				Properties: props,
			}); err != nil {
				return res, eris.Wrap(err, "export: notion update")
			}
			res.Updated++
			continue
		}

		if _, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: props,
		}); err != nil {
			return res, eris.Wrap(err, "export: notion create")
		}
		res.Created++
	}

	zap.L().Info("export: notion sync complete",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

// buildDealProperties maps a deal onto the Notion database schema.
func buildDealProperties(d model.Deal, contactName string) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: d.Title}},
			},
		},
		"Value": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: d.Value,
		},
		"Stage": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(d.Stage)},
		},
	}

	if contactName != "" {
		props["Contact"] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: contactName}},
			},
		}
	}
	if !d.CreatedAt.IsZero() {
		created := notionapi.Date(d.CreatedAt)
		props["Created"] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &created},
		}
	}
	if d.Notes != "" {
		props["Notes"] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: d.Notes}},
			},
		}
	}
	return props
}
