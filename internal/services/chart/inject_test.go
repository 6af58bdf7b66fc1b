package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const doc = "<html>\n<head>\n<title>x</title>\n</head>\n<body>\n<div>chart</div>\n</body>\n</html>\n"

func TestInjectMetaRefresh(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		seconds int
		want    string
	}{
		{"inside head", doc, 300, "<head>\n<meta http-equiv=\"refresh\" content=\"300\">\n<title>"},
		{"head with attributes", `<head lang="en"><title>x</title></head>`, 60, "<head lang=\"en\">\n<meta http-equiv=\"refresh\" content=\"60\"><title>"},
		{"no head prepends", "<div>x</div>", 30, "<meta http-equiv=\"refresh\" content=\"30\">\n<div>x</div>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(InjectMetaRefresh([]byte(tt.page), tt.seconds))
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestInjectMetaRefresh_Disabled(t *testing.T) {
	assert.Equal(t, doc, string(InjectMetaRefresh([]byte(doc), 0)))
	assert.Equal(t, doc, string(InjectMetaRefresh([]byte(doc), -5)))
}

func TestInjectMetaRefresh_Idempotent(t *testing.T) {
	once := InjectMetaRefresh([]byte(doc), 300)
	twice := InjectMetaRefresh(once, 300)
	assert.Equal(t, string(once), string(twice))

	changed := string(InjectMetaRefresh(once, 60))
	assert.Equal(t, 1, strings.Count(changed, "http-equiv"))
	assert.Contains(t, changed, `content="60"`)
}

func TestInjectBanner(t *testing.T) {
	got := string(InjectBanner([]byte(doc), []byte("<p>hi</p>")))
	assert.Contains(t, got, "<body><p>hi</p>\n<div>chart</div>")
	assert.Equal(t, doc, string(InjectBanner([]byte(doc), nil)))
}

func TestInjectLiveReload(t *testing.T) {
	got := string(InjectLiveReload([]byte(doc), "/ws/live", "basis"))
	i := strings.Index(got, "<script>")
	assert.Greater(t, i, strings.Index(got, "<div>chart</div>"))
	assert.Less(t, i, strings.Index(got, "</body>"))
	assert.Contains(t, got, `"/ws/live"`)
	assert.Contains(t, got, `"basis"`)

	bare := string(InjectLiveReload([]byte("<div/>"), "/ws/live", "k"))
	assert.True(t, strings.HasPrefix(bare, "<div/><script>"))
}
