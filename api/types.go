package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rpupo63/oneword-blog-backend/content"
	"github.com/rpupo63/oneword-blog-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler   blogHandler
	wordHandler   wordHandler
	healthHandler healthHandler
}

type generateRequest struct {
	Word string `json:"word"`
}

type createBlogRequest struct {
	Title   string  `json:"title" validate:"required,max=300"`
	Content string  `json:"content" validate:"required,max=200000"`
	Tags    TagList `json:"tags"`
}

type blogResponse struct {
	Blog *models.Blog `json:"blog"`
}

type blogCollectionResponse struct {
	Blogs []*models.Blog `json:"blogs"`
	Total int            `json:"total"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type wordValidationResponse struct {
	Valid   bool   `json:"valid"`
	Word    string `json:"word,omitempty"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// TagList accepts tags as either a comma separated string or a JSON array
// of strings.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = content.SplitTags(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}
