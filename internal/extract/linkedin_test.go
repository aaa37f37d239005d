package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const guestJobPage = `<!DOCTYPE html>
<html>
<head><title>Backend Engineer | LinkedIn</title></head>
<body>
  <nav>Sign in Join now</nav>
  <main id="main-content" class="jobs-guest-frontend">
    <h1 class="top-card-layout__title">Backend Engineer (Go)</h1>
    <div class="details mx-details-container-padding">
      <div class="description__text">
        <p>We build payment infrastructure.</p>
        <ul><li>Design Go services</li><li>Operate Kubernetes clusters</li></ul>
        <button>Show more</button>
        <button>Show less</button>
      </div>
      <div class="apply-widget">Apply now</div>
    </div>
  </main>
  <script>window.tracking = "ignore me";</script>
</body>
</html>`

func TestLooksLikeAuthwall(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected bool
	}{
		{
			name:     "authwall redirect page",
			html:     `<html><body><a href="https://www.linkedin.com/authwall?trk=x">Sign in</a></body></html>`,
			expected: true,
		},
		{
			name:     "login form url",
			html:     `<form action="/uas/login"></form>`,
			expected: true,
		},
		{
			name:     "session redirect param",
			html:     `<a href="/login?session_redirect=%2Fjobs%2F123">continue</a>`,
			expected: true,
		},
		{
			name:     "checkpoint challenge",
			html:     `<meta http-equiv="refresh" content="0;url=/checkpoint/challenge/abc">`,
			expected: true,
		},
		{
			name:     "job page with incidental authwall link",
			html:     `<div class="description__text">role text</div><a href="/authwall">sign in</a>`,
			expected: false,
		},
		{
			name:     "full guest job page",
			html:     guestJobPage,
			expected: false,
		},
		{
			name:     "unrelated page",
			html:     `<html><body>hello</body></html>`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikeAuthwall(tt.html))
		})
	}
}

func TestExtractJobText(t *testing.T) {
	t.Run("prefers the description block", func(t *testing.T) {
		text := ExtractJobText(guestJobPage)

		assert.Contains(t, text, "We build payment infrastructure.")
		assert.Contains(t, text, "Design Go services")
		assert.Contains(t, text, "Operate Kubernetes clusters")
		assert.NotContains(t, text, "Apply now")
		assert.NotContains(t, text, "Show more")
		assert.NotContains(t, text, "Sign in Join now")
		assert.NotContains(t, text, "ignore me")
	})

	t.Run("details container without description block", func(t *testing.T) {
		page := `<main id="main-content">
  <section class="details mx-details-container-padding"><p>Plain details text</p></section>
</main>`
		text := ExtractJobText(page)
		assert.Equal(t, "Plain details text", text)
	})

	t.Run("falls back to main element", func(t *testing.T) {
		page := `<body>
  <header>chrome</header>
  <main id="main-content"><p>Role description here</p></main>
</body>`
		text := ExtractJobText(page)
		assert.Equal(t, "Role description here", text)
		assert.NotContains(t, text, "chrome")
	})

	t.Run("falls back to whole document", func(t *testing.T) {
		text := ExtractJobText(`<p>Bare description</p>`)
		assert.Equal(t, "Bare description", text)
	})

	t.Run("empty document", func(t *testing.T) {
		assert.Equal(t, "", ExtractJobText(""))
	})
}

func TestExtractJobTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "top card title",
			html:     guestJobPage,
			expected: "Backend Engineer (Go)",
		},
		{
			name:     "plain h1 fallback",
			html:     `<h2>not this</h2><h1>  Data Engineer  </h1>`,
			expected: "Data Engineer",
		},
		{
			name:     "nested markup inside h1",
			html:     `<h1 class="top-card-layout__title">Senior <em>Go</em> Developer</h1>`,
			expected: "Senior Go Developer",
		},
		{
			name:     "no h1 at all",
			html:     `<div>no heading</div>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJobTitle(tt.html))
		})
	}
}
