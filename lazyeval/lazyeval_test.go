package lazyeval

import "testing"

func TestLazyEvalMemoizes(t *testing.T) {
	calls := 0
	node := New(func(args ...interface{}) (interface{}, error) {
		calls++
		a := args[0].(int)
		b := args[1].(int)
		return a + b, nil
	})

	v1, err := node.Call(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if v1.(int) != 3 {
		t.Fatalf("got %v, want 3", v1)
	}
	if _, err := node.Call(1, 2); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected the formula to run once per distinct tuple, ran %d times", calls)
	}

	if _, err := node.Call(2, 3); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("expected a second tuple to trigger a second evaluation, ran %d times", calls)
	}
	if node.Len() != 2 {
		t.Fatalf("expected 2 memoized tuples, got %d", node.Len())
	}
}

func TestLazyEvalCachesErrors(t *testing.T) {
	calls := 0
	wantErr := errTest{}
	node := New(func(args ...interface{}) (interface{}, error) {
		calls++
		return nil, wantErr
	})
	if _, err := node.Call("x"); err != wantErr {
		t.Fatalf("expected wantErr, got %v", err)
	}
	if _, err := node.Call("x"); err != wantErr {
		t.Fatalf("expected cached wantErr, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the erroring formula to run once, ran %d times", calls)
	}
}

type errTest struct{}

func (errTest) Error() string { return "test error" }
