package events

import (
	"testing"
	"time"
)

func TestHub_PublishBroadcastsToAllSubscribers(t *testing.T) {
	hub := NewHub()

	id1, ch1 := hub.Subscribe()
	id2, ch2 := hub.Subscribe()
	defer hub.Unsubscribe(id1)
	defer hub.Unsubscribe(id2)

	hub.Publish(Event{Type: TemplateCreated, Payload: map[string]interface{}{"template_id": 1}})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != TemplateCreated {
				t.Errorf("订阅者%d 期望事件类型 %s，实际 %s", i+1, TemplateCreated, evt.Type)
			}
			if evt.CreatedAt.IsZero() {
				t.Errorf("订阅者%d CreatedAt 不应为零值", i+1)
			}
		case <-time.After(time.Second):
			t.Fatalf("订阅者%d 未收到事件", i+1)
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe()
	hub.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("注销后 channel 应已关闭")
	}
	if hub.SubscriberCount() != 0 {
		t.Errorf("期望订阅者数量=0，实际=%d", hub.SubscriberCount())
	}

	// 重复注销不应 panic
	hub.Unsubscribe(id)
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	id, _ := hub.Subscribe()
	defer hub.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		// 超出缓冲深度的事件应被丢弃而非阻塞
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(Event{Type: SchedulesPublished})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish 被慢消费者阻塞")
	}
}
