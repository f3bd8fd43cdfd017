package object

import "testing"

func TestHasFlagsRequiresAllBits(t *testing.T) {
	f := FlagValue | FlagWritable
	if !HasFlags(f, FlagValue) {
		t.Fatalf("value bit should be present")
	}
	if !HasFlags(f, FlagValue|FlagWritable) {
		t.Fatalf("composed capability should be present")
	}
	if HasFlags(FlagValue, FlagValue|FlagWritable) {
		t.Fatalf("partial match must not satisfy a composed capability")
	}
}

func TestPredicatesNilSafe(t *testing.T) {
	if IsContainer(nil) || IsOpenContainer(nil) || IsValue(nil) ||
		IsWritableValue(nil) || IsLoggedValue(nil) || IsDynamic(nil) {
		t.Fatalf("nil object must fail every predicate")
	}
}

func TestContainerPredicates(t *testing.T) {
	closed := &fakeObject{flags: FlagContainer}
	open := &fakeObject{flags: FlagContainer | FlagOpenContainer}
	value := &fakeObject{flags: FlagValue}

	if !IsContainer(closed) || !IsContainer(open) {
		t.Fatalf("container bit should satisfy IsContainer")
	}
	if IsOpenContainer(closed) {
		t.Fatalf("closed container must not be open")
	}
	if !IsOpenContainer(open) {
		t.Fatalf("open container should satisfy IsOpenContainer")
	}
	if IsContainer(value) {
		t.Fatalf("value must not be a container")
	}
}

func TestWritablePredicateNeedsValueBit(t *testing.T) {
	writableOnly := &fakeObject{flags: FlagWritable}
	if IsWritableValue(writableOnly) {
		t.Fatalf("writable bit alone must not make a writable value")
	}
	if !IsWritableValue(&fakeObject{flags: FlagValue | FlagWritable}) {
		t.Fatalf("value|writable should satisfy IsWritableValue")
	}
}

func TestIsLoggedValue(t *testing.T) {
	logged := &fakeObject{flags: FlagValue}
	muted := &fakeObject{flags: FlagValue | FlagNotLogged}
	plain := &fakeObject{flags: FlagNotLogged}

	if !IsLoggedValue(logged) {
		t.Fatalf("value without not-logged should be logged")
	}
	if IsLoggedValue(muted) {
		t.Fatalf("not-logged bit must exclude the value from logging")
	}
	if IsLoggedValue(plain) {
		t.Fatalf("non-value must never be a logged value")
	}
}

func TestIsDynamic(t *testing.T) {
	if IsDynamic(&fakeObject{flags: FlagStatic}) {
		t.Fatalf("static object reported dynamic")
	}
	if !IsDynamic(&fakeObject{flags: FlagObject}) {
		t.Fatalf("default allocation should be dynamic")
	}
}

func TestFlagsString(t *testing.T) {
	cases := []struct {
		f    Flags
		want string
	}{
		{FlagObject, "object"},
		{FlagContainer | FlagOpenContainer, "open-container"},
		{FlagValue | FlagWritable | FlagHasState, "writable-value|has-state"},
		{FlagValue | FlagNotLogged | FlagStatic, "value|not-logged|static"},
	}
	for _, tc := range cases {
		if got := tc.f.String(); got != tc.want {
			t.Fatalf("Flags(%d).String() = %q, want %q", tc.f, got, tc.want)
		}
	}
}
