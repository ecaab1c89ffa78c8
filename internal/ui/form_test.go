package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distress/internal/dom"
)

func typeInto(v View, s string) View {
	for _, r := range s {
		v, _ = v.Update(keyMsg(string(r)))
	}
	return v
}

func TestLoginForm_WritesThroughToDocument(t *testing.T) {
	doc := dom.NewDocument()
	f := NewLoginForm(doc)
	assert.Equal(t, dom.LoginEmail, f.Focused())

	typeInto(f, "a@b.c")
	f.Update(keyMsg("tab"))
	assert.Equal(t, dom.LoginPassword, f.Focused())
	typeInto(f, "pw")

	assert.Equal(t, "a@b.c", doc.Value(dom.LoginEmail))
	assert.Equal(t, "pw", doc.Value(dom.LoginPassword))
	assert.Equal(t, "pw", f.Value(dom.LoginPassword))
	assert.NotContains(t, f.View(), "pw", "password is masked")
}

func TestLoginForm_EnterSubmits(t *testing.T) {
	f := NewLoginForm(dom.NewDocument())
	_, cmd := f.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, SubmitLoginMsg{}, cmd())
}

func TestRegisterForm_FieldsAndSubmit(t *testing.T) {
	doc := dom.NewDocument()
	f := NewRegisterForm(doc)

	order := []string{dom.RegisterName, dom.RegisterEmail, dom.RegisterPassword, dom.RegisterLatitude, dom.RegisterLongitude}
	for i, id := range order {
		assert.Equal(t, id, f.Focused(), "field %d", i)
		typeInto(f, "v"+id)
		f.Update(keyMsg("tab"))
	}
	assert.Equal(t, dom.RegisterName, f.Focused(), "tab wraps")
	f.Update(keyMsg("shift+tab"))
	assert.Equal(t, dom.RegisterLongitude, f.Focused())

	for _, id := range order {
		assert.Equal(t, "v"+id, doc.Value(id))
	}

	_, cmd := f.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, SubmitRegisterMsg{}, cmd())
}

func TestForm_PrefilledFromDocument(t *testing.T) {
	doc := dom.NewDocument()
	doc.SetValue(dom.LoginEmail, "kept@example.com")
	f := NewLoginForm(doc)
	assert.Equal(t, "kept@example.com", f.Value(dom.LoginEmail))
}
