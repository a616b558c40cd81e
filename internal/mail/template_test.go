package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	html, err := RenderTemplate("auth/welcome.html", WelcomeData{AppName: "Pitchfork", Name: "<John>"})
	require.NoError(t, err)
	assert.Contains(t, html, "Welcome to Pitchfork")
	assert.Contains(t, html, "Hi &lt;John&gt;,")
	assert.NotContains(t, html, "<John>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := RenderTemplate("auth/missing.html", nil)
	assert.Error(t, err)
}

func TestWelcomeMail(t *testing.T) {
	m, err := WelcomeMail("Pitchfork", "new@example.com", "Jane")
	require.NoError(t, err)
	assert.Equal(t, []string{"new@example.com"}, m.Receivers)
	assert.Equal(t, "Welcome to Pitchfork", m.Subject)
	assert.Contains(t, m.HTMLContent, "Hi Jane,")
}
