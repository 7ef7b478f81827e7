package database

import (
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-playground/assert/v2"
)

func TestQuerySnapshotKeepsReadTime(t *testing.T) {
	readTime := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

	s := querySnapshot(readTime, []*firestore.DocumentSnapshot{{}, nil})
	assert.Equal(t, s.ReadTime, readTime)
	assert.Equal(t, len(s.Docs), 0)

	s = querySnapshot(readTime, nil)
	assert.Equal(t, s.ReadTime, readTime)
}

func TestDocSnapshotOfMissingDocument(t *testing.T) {
	readTime := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

	s := docSnapshot(&firestore.DocumentSnapshot{ReadTime: readTime})
	assert.Equal(t, s.ReadTime, readTime)
	assert.Equal(t, len(s.Docs), 0)
}
