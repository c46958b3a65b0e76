package redisstore

import (
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/lineage/pkg/store"
)

func TestKey(t *testing.T) {
	if got := Key("usr_123456"); got != "lineage:tree:usr_123456" {
		t.Errorf("Key = %q", got)
	}
}

func TestNewRejectsUnsafeUser(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	if _, err := New(client, "a b"); err == nil {
		t.Error("expected error for user ID with whitespace")
	}
	s, err := New(client, "usr_1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on borrowed client: %v", err)
	}
}

func TestDecodeFields(t *testing.T) {
	fields := map[string]string{}
	for _, p := range store.Seed() {
		data, _ := json.Marshal(p)
		fields[p.ID] = string(data)
	}
	fields["6"] = `{"firstName":"Lancelot","lastName":"du Lac","gender":"Male"}`

	people, err := decodeFields(fields)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 6 {
		t.Fatalf("got %d people", len(people))
	}
	for _, p := range people {
		if p.ID == "" {
			t.Errorf("person without ID: %+v", p)
		}
		if p.SpouseIDs == nil || p.ChildrenIDs == nil {
			t.Errorf("relationship slices should not be nil for %s", p.ID)
		}
	}

	if _, err := decodeFields(map[string]string{"x": "{"}); err == nil {
		t.Error("corrupt field should fail")
	}
}
