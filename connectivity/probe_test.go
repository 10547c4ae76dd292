package connectivity

import "testing"

func TestStaticAndFunc(t *testing.T) {
	if !Static(true).IsConnected() || Static(false).IsConnected() {
		t.Error("Static should return its value")
	}
	if !Always.IsConnected() {
		t.Error("Always should be connected")
	}

	up := false
	f := Func(func() bool { return up })
	if f.IsConnected() {
		t.Error("expected disconnected")
	}
	up = true
	if !f.IsConnected() {
		t.Error("expected connected")
	}

	var nilFunc Func
	if nilFunc.IsConnected() {
		t.Error("nil Func should report disconnected")
	}
}
