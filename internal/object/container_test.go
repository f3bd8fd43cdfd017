package object

import "testing"

func TestFixedContainerLendReturn(t *testing.T) {
	leaf := &fakeObject{flags: FlagValue}
	c := NewFixedContainer(leaf, nil)

	got := c.Item(0)
	if got != Object(leaf) {
		t.Fatalf("slot 0 returned %v", got)
	}
	c.ReturnItem(0, got)

	// Lend/return leaves observable state unchanged.
	if again := c.Item(0); again != Object(leaf) {
		t.Fatalf("second borrow returned %v", again)
	} else {
		c.ReturnItem(0, again)
	}
	if c.Borrows() != 0 {
		t.Fatalf("outstanding borrows = %d, want 0", c.Borrows())
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestFixedContainerOutOfRange(t *testing.T) {
	c := NewFixedContainer(&fakeObject{})
	if c.Item(-1) != nil {
		t.Fatalf("negative id should be empty")
	}
	if c.Item(5) != nil {
		t.Fatalf("out-of-range id should be empty")
	}
	if c.Item(InvalidID) != nil {
		t.Fatalf("invalid id should be empty")
	}
	if c.Borrows() != 0 {
		t.Fatalf("failed lookups must not count as borrows")
	}
}

func TestDynamicContainerAddGrows(t *testing.T) {
	c := NewDynamicContainer()
	if c.Size() != 0 {
		t.Fatalf("fresh container size = %d", c.Size())
	}
	o := &fakeObject{}
	if !c.Add(3, o) {
		t.Fatalf("add at 3 failed")
	}
	if c.Size() != 4 {
		t.Fatalf("size after growth = %d, want 4", c.Size())
	}
	if c.Item(1) != nil {
		t.Fatalf("intermediate slot should be empty")
	}
	got := c.Item(3)
	if got != Object(o) {
		t.Fatalf("slot 3 returned %v", got)
	}
	c.ReturnItem(3, got)
}

func TestDynamicContainerAddRejectsBadSlot(t *testing.T) {
	c := NewDynamicContainer()
	if c.Add(-1, &fakeObject{}) {
		t.Fatalf("negative slot accepted")
	}
	if c.Add(3, nil) {
		t.Fatalf("nil object accepted")
	}
}

func TestDynamicContainerNext(t *testing.T) {
	c := NewDynamicContainer()
	if c.Next() != 0 {
		t.Fatalf("empty container next = %d, want 0", c.Next())
	}
	c.Add(0, &fakeObject{})
	c.Add(2, &fakeObject{})
	if c.Next() != 1 {
		t.Fatalf("next = %d, want lowest free slot 1", c.Next())
	}
	c.Add(1, &fakeObject{})
	if c.Next() != 3 {
		t.Fatalf("next = %d, want first slot past the end 3", c.Next())
	}
}

func TestDynamicContainerNextWhenFull(t *testing.T) {
	c := NewDynamicContainer()
	for id := ID(0); ; id++ {
		if !c.Add(id, &fakeObject{}) {
			t.Fatalf("add at %d failed", id)
		}
		if id == MaxID {
			break
		}
	}
	if c.Next() != InvalidID {
		t.Fatalf("full container next = %d, want InvalidID", c.Next())
	}
}

func TestDynamicContainerRemove(t *testing.T) {
	c := NewDynamicContainer()
	c.Add(0, &fakeObject{})
	c.Remove(0)
	if c.Item(0) != nil {
		t.Fatalf("removed slot should be empty")
	}
	// Out-of-range and repeated removals are no-ops.
	c.Remove(0)
	c.Remove(9)
	c.Remove(InvalidID)
}

func TestFactoryContainerFreshInstancePerBorrow(t *testing.T) {
	built := 0
	c := NewFactoryContainer(2, func(id ID) Object {
		built++
		return &fakeObject{flags: FlagValue}
	})

	first := c.Item(0)
	c.ReturnItem(0, first)
	second := c.Item(0)
	c.ReturnItem(0, second)

	if first == second {
		t.Fatalf("factory returned the same instance twice")
	}
	if built != 2 {
		t.Fatalf("factory built %d instances, want 2", built)
	}
	if c.Item(2) != nil {
		t.Fatalf("out-of-range id should be empty")
	}
}
