// Package scene holds the drawables that make up a frame.
//
// Drawables live as entities in an ark world. The scene only stores and
// draws them; disposing a drawable is the owner's job, done right after
// Detach.
package scene

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
)

// Drawable is anything the frame renders.
type Drawable interface {
	Draw()
	Unload()
}

// Node is the component attached to every scene entity.
type Node struct {
	Name     string
	Drawable Drawable
	Hidden   bool
	Order    uint64 // attach sequence, assigned by the scene
}

// Scene is the render graph: a flat set of attached drawables.
type Scene struct {
	world   *ecs.World
	nodeMap *ecs.Map1[Node]
	filter  *ecs.Filter1[Node]
	next    uint64
}

// New creates an empty scene.
func New() *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world:   world,
		nodeMap: ecs.NewMap1[Node](world),
		filter:  ecs.NewFilter1[Node](world),
	}
}

// Attach adds a drawable and returns its handle.
func (s *Scene) Attach(name string, d Drawable) ecs.Entity {
	s.next++
	return s.nodeMap.NewEntity(&Node{Name: name, Drawable: d, Order: s.next})
}

// Detach removes the entity from the scene and returns its drawable so the
// caller can dispose it. Detaching a dead entity is a no-op.
func (s *Scene) Detach(e ecs.Entity) (Drawable, bool) {
	if !s.world.Alive(e) {
		return nil, false
	}
	d := s.nodeMap.Get(e).Drawable
	s.world.RemoveEntity(e)
	return d, true
}

// Contains reports whether e is attached.
func (s *Scene) Contains(e ecs.Entity) bool {
	return s.world.Alive(e) && s.nodeMap.HasAll(e)
}

// Node returns the node of an attached entity, or nil.
func (s *Scene) Node(e ecs.Entity) *Node {
	if !s.Contains(e) {
		return nil
	}
	return s.nodeMap.Get(e)
}

// Count returns the number of attached drawables.
func (s *Scene) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Each calls fn for every attached node.
func (s *Scene) Each(fn func(e ecs.Entity, n *Node)) {
	query := s.filter.Query()
	for query.Next() {
		fn(query.Entity(), query.Get())
	}
}

// Draw renders every visible node in attach order.
func (s *Scene) Draw() {
	var nodes []*Node
	query := s.filter.Query()
	for query.Next() {
		if n := query.Get(); !n.Hidden {
			nodes = append(nodes, n)
		}
	}
	// Archetype order is not attach order
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Order < nodes[j].Order })
	for _, n := range nodes {
		n.Drawable.Draw()
	}
}

// Clear detaches and unloads every drawable.
func (s *Scene) Clear() {
	var entities []ecs.Entity
	s.Each(func(e ecs.Entity, _ *Node) {
		entities = append(entities, e)
	})
	for _, e := range entities {
		if d, ok := s.Detach(e); ok && d != nil {
			d.Unload()
		}
	}
}
