package codec

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"netatlas/internal/domain"
)

// YAMLCodec handles YAML export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlGraph represents the YAML structure for a graph snapshot
type yamlGraph struct {
	Devices     []yamlDevice     `yaml:"devices"`
	Connections []yamlConnection `yaml:"connections"`
}

type yamlDevice struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	SpaceID    string `yaml:"space_id"`
	Vendor     string `yaml:"vendor,omitempty"`
	Model      string `yaml:"model,omitempty"`
	IsReceiver bool   `yaml:"is_receiver"`
	CreatedAt  string `yaml:"created_at"`
}

type yamlConnection struct {
	ID              string `yaml:"id"`
	FromDeviceID    string `yaml:"from_device_id"`
	ToDeviceID      string `yaml:"to_device_id"`
	FromInterfaceID string `yaml:"from_interface_id"`
	ToInterfaceID   string `yaml:"to_interface_id"`
	Technology      string `yaml:"technology"`
	VlanID          string `yaml:"vlan_id,omitempty"`
	Notes           string `yaml:"notes,omitempty"`
	CreatedAt       string `yaml:"created_at"`
}

// Export writes the graph snapshot as YAML
func (c *YAMLCodec) Export(graph *domain.Graph, w io.Writer) error {
	yg := yamlGraph{
		Devices:     make([]yamlDevice, 0, len(graph.Devices)),
		Connections: make([]yamlConnection, 0, len(graph.Connections)),
	}

	for _, device := range graph.Devices {
		yg.Devices = append(yg.Devices, yamlDevice{
			ID:         device.ID,
			Name:       device.Name,
			Type:       device.Type,
			SpaceID:    device.SpaceID,
			Vendor:     device.Vendor,
			Model:      device.Model,
			IsReceiver: device.IsReceiver,
			CreatedAt:  device.CreatedAt.Format(time.RFC3339),
		})
	}
	for _, conn := range graph.Connections {
		yg.Connections = append(yg.Connections, yamlConnection{
			ID:              conn.ID,
			FromDeviceID:    conn.FromDeviceID,
			ToDeviceID:      conn.ToDeviceID,
			FromInterfaceID: conn.FromInterfaceID,
			ToInterfaceID:   conn.ToInterfaceID,
			Technology:      string(conn.Technology),
			VlanID:          conn.VlanID,
			Notes:           conn.Notes,
			CreatedAt:       conn.CreatedAt.Format(time.RFC3339),
		})
	}

	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	if err := encoder.Encode(yg); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
