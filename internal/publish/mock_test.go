package publish

import (
	"context"
	"errors"
	"testing"
)

func TestMockPublisher(t *testing.T) {
	mock := NewMockPublisher("/data/code")
	ctx := context.Background()

	paths, err := mock.Publish(ctx, "p1abc", testFiles())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(paths) != 3 || paths[0] != "/data/code/p1abc/p1abc/sites/default/settings.local_pre.php" {
		t.Errorf("unexpected paths %v", paths)
	}

	mock.PublishFunc = func(sid string, files []File) ([]string, error) {
		return nil, errors.New("disk full")
	}
	if _, err := mock.Publish(ctx, "p2", nil); err == nil {
		t.Error("expected error from PublishFunc")
	}

	if got := mock.PublishedSIDs(); len(got) != 2 || got[0] != "p1abc" || got[1] != "p2" {
		t.Errorf("PublishedSIDs = %v", got)
	}

	_ = mock.Remove("p1abc")
	_, _ = mock.List()
	_, _ = mock.Exists("p1abc")
	if len(mock.RemoveCalls) != 1 || mock.ListCalls != 1 || len(mock.ExistsCalls) != 1 {
		t.Error("calls were not tracked")
	}

	mock.Reset()
	if len(mock.PublishCalls) != 0 || mock.ListCalls != 0 {
		t.Error("Reset should clear call tracking")
	}
}
