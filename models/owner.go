package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Owner records who created a blog: a user, or nobody for rows that predate
// authenticated creation. The zero value is Anonymous.
type Owner struct {
	userID uuid.UUID
	owned  bool
}

func OwnedBy(userID uuid.UUID) Owner {
	return Owner{userID: userID, owned: true}
}

func Anonymous() Owner {
	return Owner{}
}

// UserID returns the owning user and whether there is one.
func (o Owner) UserID() (uuid.UUID, bool) {
	return o.userID, o.owned
}

func (o Owner) IsAnonymous() bool {
	return !o.owned
}

// Owns reports whether userID owns the record. Anonymous records are owned
// by no one.
func (o Owner) Owns(userID uuid.UUID) bool {
	return o.owned && o.userID == userID
}

func (o Owner) String() string {
	if !o.owned {
		return "anonymous"
	}
	return o.userID.String()
}

// Scan implements sql.Scanner for the nullable user_id column.
func (o *Owner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = Anonymous()
		return nil
	case string:
		return o.parse(v)
	case []byte:
		return o.parse(string(v))
	default:
		return fmt.Errorf("models: cannot scan %T into Owner", src)
	}
}

func (o *Owner) parse(s string) error {
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("models: invalid owner id %q: %w", s, err)
	}
	*o = OwnedBy(id)
	return nil
}

// Value implements driver.Valuer. Anonymous is stored as NULL.
func (o Owner) Value() (driver.Value, error) {
	if !o.owned {
		return nil, nil
	}
	return o.userID.String(), nil
}

func (o Owner) MarshalJSON() ([]byte, error) {
	if !o.owned {
		return []byte("null"), nil
	}
	return json.Marshal(o.userID.String())
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Anonymous()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return o.parse(s)
}
