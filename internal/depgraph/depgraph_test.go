package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(to string) Edge[string] { return Edge[string]{To: to} }
func opt(to string) Edge[string] { return Edge[string]{To: to, Optional: true} }

func TestFindCycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(g *Graph[string])
		want  []string
	}{
		{
			name:  "empty",
			build: func(*Graph[string]) {},
			want:  nil,
		},
		{
			name: "chain",
			build: func(g *Graph[string]) {
				g.AddNode("a", req("b")).AddNode("b", req("c")).AddNode("c")
			},
			want: nil,
		},
		{
			name: "diamond",
			build: func(g *Graph[string]) {
				g.AddNode("a", req("b"), req("c")).AddNode("b", req("d")).AddNode("c", req("d")).AddNode("d")
			},
			want: nil,
		},
		{
			name: "pair",
			build: func(g *Graph[string]) {
				g.AddNode("a", req("b")).AddNode("b", req("a"))
			},
			want: []string{"a", "b", "a"},
		},
		{
			name: "self",
			build: func(g *Graph[string]) {
				g.AddNode("a", req("a"))
			},
			want: []string{"a", "a"},
		},
		{
			name: "isolated cycle not reachable from first node",
			build: func(g *Graph[string]) {
				g.AddNode("root").AddNode("x", req("y")).AddNode("y", req("z")).AddNode("z", req("x"))
			},
			want: []string{"x", "y", "z", "x"},
		},
		{
			name: "optional edges participate",
			build: func(g *Graph[string]) {
				g.AddNode("a", opt("b")).AddNode("b", req("a"))
			},
			want: []string{"a", "b", "a"},
		},
		{
			name: "unknown targets ignored",
			build: func(g *Graph[string]) {
				g.AddNode("a", req("ghost"))
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New[string]()
			tt.build(g)
			assert.Equal(t, tt.want, g.FindCycle())
		})
	}
}

func TestMissing(t *testing.T) {
	t.Parallel()

	g := New[string]().
		AddNode("a", req("b"), opt("maybe"), req("ghost")).
		AddNode("b", req("other"))

	assert.Equal(t, []Missing[string]{
		{From: "a", To: "ghost"},
		{From: "b", To: "other"},
	}, g.Missing())
}

func TestTopoOrder(t *testing.T) {
	t.Parallel()

	g := New[string]().
		AddNode("app", req("player"), req("tts")).
		AddNode("tts", req("player")).
		AddNode("player")

	order, ok := g.TopoOrder()
	require.True(t, ok)
	assert.Equal(t, []string{"player", "tts", "app"}, order)

	g.AddNode("player", req("app"))
	_, ok = g.TopoOrder()
	assert.False(t, ok)
}

func TestAddNode_ReplaceKeepsPosition(t *testing.T) {
	t.Parallel()

	g := New[string]().AddNode("a").AddNode("b")
	g.AddNode("a", req("b"))

	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.Equal(t, []Edge[string]{req("b")}, g.Edges("a"))
	assert.True(t, g.Has("b"))
	assert.False(t, g.Has("c"))
}
