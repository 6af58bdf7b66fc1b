package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	c := &Client{BucketName: "charts", Prefix: "cephu/"}
	assert.Equal(t, "cephu/index.html", c.ObjectName("index.html"))

	c.Prefix = ""
	assert.Equal(t, "analysis_NVDA.html", c.ObjectName("analysis_NVDA.html"))
}

func TestNewClient_MissingKeyFile(t *testing.T) {
	_, err := NewClient(context.Background(), "charts", "", "/does/not/exist.json")
	assert.ErrorContains(t, err, "service account key not found")
}
