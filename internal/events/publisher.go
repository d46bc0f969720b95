// Package events publishes vehicle change notifications. Delivery is best
// effort: a failed publish is logged and never fails the originating
// request.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/vehicare/vehicare-api/internal/models"
)

// Publisher emits vehicle lifecycle events.
type Publisher interface {
	VehicleCreated(vehicle *models.Vehicle)
	VehicleUpdated(vehicle *models.Vehicle)
	VehicleDeleted(vehicleId, ownerId int)
}

// vehicleEvent is the wire form of a published event.
type vehicleEvent struct {
	Event     string    `json:"event"`
	VehicleId int       `json:"vehicle_id"`
	UserId    int       `json:"user_id"`
	VIN       string    `json:"vin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MQTTPublisher publishes events to an MQTT broker at QoS 0.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(broker, clientId, topicPrefix string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientId).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect: timeout after 10s")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &MQTTPublisher{
		client:      client,
		topicPrefix: topicPrefix,
	}, nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// VehicleCreated publishes a created event.
func (p *MQTTPublisher) VehicleCreated(vehicle *models.Vehicle) {
	p.publish("created", vehicleEvent{
		Event:     "created",
		VehicleId: vehicle.Id,
		UserId:    vehicle.UserId,
		VIN:       vehicle.VIN,
		Timestamp: time.Now().UTC(),
	})
}

// VehicleUpdated publishes an updated event.
func (p *MQTTPublisher) VehicleUpdated(vehicle *models.Vehicle) {
	p.publish("updated", vehicleEvent{
		Event:     "updated",
		VehicleId: vehicle.Id,
		UserId:    vehicle.UserId,
		VIN:       vehicle.VIN,
		Timestamp: time.Now().UTC(),
	})
}

// VehicleDeleted publishes a deleted event.
func (p *MQTTPublisher) VehicleDeleted(vehicleId, ownerId int) {
	p.publish("deleted", vehicleEvent{
		Event:     "deleted",
		VehicleId: vehicleId,
		UserId:    ownerId,
		Timestamp: time.Now().UTC(),
	})
}

func (p *MQTTPublisher) publish(event string, payload vehicleEvent) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal vehicle event")
		return
	}

	topic := fmt.Sprintf("%s/vehicles/%s", p.topicPrefix, event)
	token := p.client.Publish(topic, 0, false, data)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.WithFields(log.Fields{
				"topic":      topic,
				"vehicle_id": payload.VehicleId,
			}).WithError(token.Error()).Warn("Failed to publish vehicle event")
		}
	}()
}

// NoopPublisher discards all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) VehicleCreated(*models.Vehicle)        {}
func (NoopPublisher) VehicleUpdated(*models.Vehicle)        {}
func (NoopPublisher) VehicleDeleted(vehicleId, ownerId int) {}
