package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "stockroom:view:items", Key(ItemList))
	assert.Equal(t, "stockroom:view:items:list:abc", Key(ItemList, "list", "abc"))
	assert.Equal(t, "stockroom:view:item:42", Key(ItemPage("42")))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Invalidate(context.Background(), ItemList, History)
	r.Invalidate(context.Background())

	assert.Equal(t, []View{ItemList, History}, r.Views())
}
