// Package pagination carries cursor paging types shared by list responses.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

// Pagination is the request side of cursor paging.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

// Cursor locates a position in a result set.
type Cursor struct {
	ID string `json:"id,omitempty"`
}

// PageInfo is the response side of cursor paging.
type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

// EncodeCursor renders a cursor as an opaque token.
func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeCursor parses an opaque token back into a cursor.
func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
