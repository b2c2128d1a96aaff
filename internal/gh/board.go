package gh

import (
	"context"
	"fmt"

	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

const boardItemsQuery = `
query($org: String!, $number: Int!, $pageSize: Int!, $cursor: String, $ownerField: String!, $dispositionField: String!, $releaseField: String!) {
  organization(login: $org) {
    projectV2(number: $number) {
      items(first: $pageSize, after: $cursor) {
        pageInfo { endCursor hasNextPage }
        nodes {
          id
          content {
            ... on PullRequest { url }
            ... on Issue { url }
          }
          owner: fieldValueByName(name: $ownerField) {
            ... on ProjectV2ItemFieldTextValue { text }
          }
          disposition: fieldValueByName(name: $dispositionField) {
            ... on ProjectV2ItemFieldSingleSelectValue { name }
          }
          release: fieldValueByName(name: $releaseField) {
            ... on ProjectV2ItemFieldSingleSelectValue { name }
          }
        }
      }
    }
  }
}`

const addItemMutation = `
mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`

const setTextMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $text: String!) {
  updateProjectV2ItemFieldValue(input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: {text: $text}}) {
    projectV2Item { id }
  }
}`

const setSingleSelectMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $optionId: String!) {
  updateProjectV2ItemFieldValue(input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: {singleSelectOptionId: $optionId}}) {
    projectV2Item { id }
  }
}`

const clearFieldMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!) {
  clearProjectV2ItemFieldValue(input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId}) {
    projectV2Item { id }
  }
}`

type textValue struct {
	Text string `json:"text"`
}

type selectValue struct {
	Name string `json:"name"`
}

type boardItemJSON struct {
	ID      string `json:"id"`
	Content *struct {
		URL string `json:"url"`
	} `json:"content"`
	Owner       *textValue   `json:"owner"`
	Disposition *selectValue `json:"disposition"`
	Release     *selectValue `json:"release"`
}

// toEntry maps an item node. A field the item has no value for is null.
func (b *boardItemJSON) toEntry() *model.BoardEntry {
	entry := &model.BoardEntry{ID: b.ID}
	if b.Content != nil {
		entry.URL = b.Content.URL
	}
	if b.Owner != nil {
		entry.Owner = b.Owner.Text
	}
	if b.Disposition != nil {
		entry.Disposition = model.Disposition(b.Disposition.Name)
	}
	if b.Release != nil {
		entry.Release = b.Release.Name
	}
	return entry
}

// ListBoardItems returns one page of board items with their tracked fields
func (c *Client) ListBoardItems(ctx context.Context, board Board, cursor string) (paginate.Page[*model.BoardEntry], error) {
	var data struct {
		Organization *struct {
			ProjectV2 *struct {
				Items struct {
					PageInfo pageInfo        `json:"pageInfo"`
					Nodes    []boardItemJSON `json:"nodes"`
				} `json:"items"`
			} `json:"projectV2"`
		} `json:"organization"`
	}

	vars := map[string]any{
		"org":              board.Org,
		"number":           board.Number,
		"pageSize":         c.pageSize,
		"cursor":           cursorVar(cursor),
		"ownerField":       board.OwnerField,
		"dispositionField": board.DispositionField,
		"releaseField":     board.ReleaseField,
	}
	if err := c.graphql(ctx, boardItemsQuery, vars, &data); err != nil {
		return paginate.Page[*model.BoardEntry]{}, fmt.Errorf("failed to list board items: %w", err)
	}
	if data.Organization == nil || data.Organization.ProjectV2 == nil {
		return paginate.Page[*model.BoardEntry]{}, fmt.Errorf("project %s/%d: %w", board.Org, board.Number, ErrNotFound)
	}

	items := data.Organization.ProjectV2.Items
	page := paginate.Page[*model.BoardEntry]{
		EndCursor:   items.PageInfo.EndCursor,
		HasNextPage: items.PageInfo.HasNextPage,
	}
	for i := range items.Nodes {
		page.Items = append(page.Items, items.Nodes[i].toEntry())
	}
	return page, nil
}

// AddBoardItem links content to the project and returns the new item id.
// Adding content that is already on the board returns the existing item.
func (c *Client) AddBoardItem(ctx context.Context, projectID, contentID string) (string, error) {
	var data struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}

	vars := map[string]any{"projectId": projectID, "contentId": contentID}
	if err := c.graphql(ctx, addItemMutation, vars, &data); err != nil {
		return "", fmt.Errorf("failed to add %s to board: %w", contentID, err)
	}
	if data.AddProjectV2ItemByID.Item.ID == "" {
		return "", fmt.Errorf("board item for %s was not returned", contentID)
	}
	return data.AddProjectV2ItemByID.Item.ID, nil
}

// SetTextField writes a text field. An empty value clears the field.
func (c *Client) SetTextField(ctx context.Context, projectID, itemID, fieldID, text string) error {
	if text == "" {
		return c.ClearField(ctx, projectID, itemID, fieldID)
	}
	vars := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"text":      text,
	}
	if err := c.graphql(ctx, setTextMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to set field %s on %s: %w", fieldID, itemID, err)
	}
	return nil
}

// SetSingleSelect picks an option of a single-select field
func (c *Client) SetSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	vars := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"optionId":  optionID,
	}
	if err := c.graphql(ctx, setSingleSelectMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to set field %s on %s: %w", fieldID, itemID, err)
	}
	return nil
}

// ClearField removes the value of a field
func (c *Client) ClearField(ctx context.Context, projectID, itemID, fieldID string) error {
	vars := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
	}
	if err := c.graphql(ctx, clearFieldMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to clear field %s on %s: %w", fieldID, itemID, err)
	}
	return nil
}
