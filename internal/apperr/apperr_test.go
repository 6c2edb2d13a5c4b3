package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("导入赛事失败: %w", NotFound("Match not found"))
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("kind = %s", KindOf(wrapped))
	}
	if MessageOf(wrapped) != "Match not found" {
		t.Errorf("message = %s", MessageOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain errors are internal")
	}
	if Is(nil, KindInternal) {
		t.Error("nil is not an error of any kind")
	}

	cause := errors.New("timeout")
	up := Upstream("odds feed unavailable", cause)
	if !errors.Is(up, cause) || KindOf(up) != KindUpstream {
		t.Errorf("upstream = %v", up)
	}
}
