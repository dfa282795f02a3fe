package scenekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type comp1 struct{ a int }
type comp2 struct{ b float32 }
type comp3 struct{}

func queryFixture(t *testing.T) (*Commands, []EntityId) {
	t.Helper()
	app := NewApp()
	cmd := app.Commands()
	ids := []EntityId{
		cmd.AddEntity(comp1{a: 1}),                      // comp1 only
		cmd.AddEntity(comp1{a: 2}, comp2{b: 1.37}),          // comp1 & comp2
		cmd.AddEntity(comp1{a: 3}, comp2{b: 4.20}, comp3{}), // comp1 & comp2 & extra
		cmd.AddEntity(comp1{a: 4}, comp3{}),                 // comp1 & extra
		cmd.AddEntity(comp2{b: 3.14}),                       // comp2 only
	}
	app.FlushCommands()
	return cmd, ids
}

func TestQuery_Map(t *testing.T) {
	cmd, ids := queryFixture(t)

	got := map[EntityId]int{}
	MakeQuery2[comp1, comp2](cmd).Map(func(eid EntityId, c1 *comp1, c2 *comp2) bool {
		got[eid] = c1.a
		return true
	})
	assert.Equal(t, map[EntityId]int{ids[1]: 2, ids[2]: 3}, got)
}

func TestQuery_MapWritesThrough(t *testing.T) {
	cmd, ids := queryFixture(t)

	MakeQuery1[comp1](cmd).Map(func(_ EntityId, c *comp1) bool {
		c.a *= 10
		return true
	})
	c, ok := GetComponent[comp1](cmd, ids[3])
	assert.True(t, ok)
	assert.Equal(t, 40, c.a)
}

func TestQuery_Without(t *testing.T) {
	cmd, ids := queryFixture(t)

	var got []EntityId
	MakeQuery1[comp1](cmd).Without(comp3{}).Map(func(eid EntityId, _ *comp1) bool {
		got = append(got, eid)
		return true
	})
	assert.ElementsMatch(t, []EntityId{ids[0], ids[1]}, got)
}

func TestQuery_Optionals(t *testing.T) {
	cmd, _ := queryFixture(t)

	withExtra, without := 0, 0
	MakeQuery2[comp1, comp3](cmd).Map(func(_ EntityId, _ *comp1, c3 *comp3) bool {
		if c3 == nil {
			without++
		} else {
			withExtra++
		}
		return true
	}, comp3{})
	assert.Equal(t, 2, withExtra)
	assert.Equal(t, 2, without)
}

func TestQuery_StopEarly(t *testing.T) {
	cmd, _ := queryFixture(t)

	n := 0
	MakeQuery1[comp1](cmd).Map(func(EntityId, *comp1) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}

func TestQuery_EntitiesSorted(t *testing.T) {
	cmd, ids := queryFixture(t)
	assert.Equal(t, []EntityId{ids[0], ids[1], ids[2], ids[3]}, MakeQuery1[comp1](cmd).Entities())
}
