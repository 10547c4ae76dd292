package transport

import (
	"context"
	"testing"
)

func TestHeaders_SetGetOrder(t *testing.T) {
	var h Headers
	h.Set("content-type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Authorization", "Bearer a")
	h.Set("CONTENT-TYPE", "text/plain")

	if h.Len() != 3 {
		t.Fatalf("expected 3 headers, got %d", h.Len())
	}
	if v, _ := h.Get("Content-Type"); v != "text/plain" {
		t.Errorf("Set should replace in place, got %q", v)
	}

	var names []string
	h.Each(func(name, _ string) { names = append(names, name) })
	want := []string{"Content-Type", "Accept", "Authorization"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestHeaders_Del(t *testing.T) {
	var h Headers
	h.Set("A", "1")
	h.Set("B", "2")
	h.Del("a")
	if _, ok := h.Get("A"); ok {
		t.Error("A should be deleted")
	}
	if v, ok := h.Get("B"); !ok || v != "2" {
		t.Errorf("B = %q, %v", v, ok)
	}
}

func TestFunc_Send(t *testing.T) {
	called := false
	var tr Transport = Func(func(_ context.Context, req *Request) (*Response, error) {
		called = true
		return &Response{StatusCode: 204}, nil
	})
	resp, err := tr.Send(context.Background(), &Request{})
	if err != nil || !called || resp.StatusCode != 204 {
		t.Errorf("Func did not delegate: resp=%v err=%v called=%v", resp, err, called)
	}
}
