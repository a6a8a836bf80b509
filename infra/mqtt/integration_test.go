//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMosquitto(ctx context.Context, t *testing.T) string {
	t.Helper()
	conf := "listener 1883\nallow_anonymous true\npersistence false\n"
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("container start: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestNotifierAgainstMosquitto(t *testing.T) {
	ctx := context.Background()
	broker := startMosquitto(ctx, t)

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("listener"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("listener connect: %v", token.Error())
	}
	defer sub.Disconnect(100)
	got := make(chan Message, 1)
	token := sub.Subscribe("procsched/appointments/+", 1, func(_ paho.Client, m paho.Message) {
		var msg Message
		if err := json.Unmarshal(m.Payload(), &msg); err == nil {
			got <- msg
		}
	})
	if token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	n, err := NewNotifier(Config{Broker: broker, ClientID: "notifier", QoS: 1})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	defer n.Close()
	if err := n.Notify(ctx, appointment()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	select {
	case msg := <-got:
		if msg.Appointment.ID != 42 {
			t.Fatalf("unexpected appointment %+v", msg.Appointment)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("notification not received")
	}
}
