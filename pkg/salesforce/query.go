package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// SFContact represents a Salesforce Contact record.
type SFContact struct {
	ID        string `json:"Id" salesforce:"Id"`
	FirstName string `json:"FirstName" salesforce:"FirstName"`
	LastName  string `json:"LastName" salesforce:"LastName"`
	Email     string `json:"Email" salesforce:"Email"`
	Phone     string `json:"Phone" salesforce:"Phone"`
}

// SFOpportunity represents a Salesforce Opportunity record.
type SFOpportunity struct {
	ID        string  `json:"Id" salesforce:"Id"`
	Name      string  `json:"Name" salesforce:"Name"`
	StageName string  `json:"StageName" salesforce:"StageName"`
	Amount    float64 `json:"Amount" salesforce:"Amount"`
}

// contactFields are the SOQL fields selected for Contact queries.
var contactFields = []string{"Id", "FirstName", "LastName", "Email", "Phone"}

// FindContactByEmail queries Salesforce for a Contact with the given email.
// Returns nil if no contact is found.
func FindContactByEmail(ctx context.Context, c Client, email string) (*SFContact, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact WHERE Email = '%s' LIMIT 1",
		strings.Join(contactFields, ", "),
		escapeSoql(email),
	)

	var contacts []SFContact
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find contact by email %s", email))
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// FindOpportunityByName queries Salesforce for an Opportunity with the
// given name. Returns nil if none is found.
func FindOpportunityByName(ctx context.Context, c Client, name string) (*SFOpportunity, error) {
	soql := fmt.Sprintf(
		"SELECT Id, Name, StageName, Amount FROM Opportunity WHERE Name = '%s' LIMIT 1",
		escapeSoql(name),
	)

	var opps []SFOpportunity
	if err := c.Query(ctx, soql, &opps); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find opportunity by name %s", name))
	}
	if len(opps) == 0 {
		return nil, nil
	}
	return &opps[0], nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
