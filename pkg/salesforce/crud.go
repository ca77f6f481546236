package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// CreateContact creates a new Contact record and returns the new Salesforce ID.
func CreateContact(ctx context.Context, c Client, fields map[string]any) (string, error) {
	if fields["LastName"] == nil || fields["LastName"] == "" {
		return "", eris.New("sf: contact LastName is required")
	}
	id, err := c.InsertOne(ctx, "Contact", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create contact")
	}
	return id, nil
}

// CreateOpportunity creates a new Opportunity record and returns the new
// Salesforce ID. Name, StageName, and CloseDate are required by the API.
func CreateOpportunity(ctx context.Context, c Client, fields map[string]any) (string, error) {
	for _, required := range []string{"Name", "StageName", "CloseDate"} {
		if fields[required] == nil || fields[required] == "" {
			return "", eris.New(fmt.Sprintf("sf: opportunity %s is required", required))
		}
	}
	id, err := c.InsertOne(ctx, "Opportunity", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create opportunity")
	}
	return id, nil
}

// UpdateOpportunityStage moves an Opportunity to the given stage.
func UpdateOpportunityStage(ctx context.Context, c Client, oppID, stageName string) error {
	if oppID == "" {
		return eris.New("sf: opportunity id is required")
	}
	if stageName == "" {
		return eris.New("sf: stage name is required")
	}
	fields := map[string]any{"StageName": stageName}
	if err := c.UpdateOne(ctx, "Opportunity", oppID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update opportunity %s stage", oppID))
	}
	return nil
}

// BulkInsertOpportunities splits records into batches of 200 (SF Collections
// API limit) and sends them via InsertCollection.
func BulkInsertOpportunities(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult
	for start := 0; start < len(records); start += maxBatchSize {
		end := min(start+maxBatchSize, len(records))
		results, err := c.InsertCollection(ctx, "Opportunity", records[start:end])
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk insert opportunities batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}
