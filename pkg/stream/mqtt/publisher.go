// Package mqtt publishes the board output stream to an MQTT broker.
package mqtt

import (
	"net/url"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// DefaultTopic is the topic under the prefix receiving the output.
const DefaultTopic = "output"

// Client is the subset of paho.Client used by Publisher.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher is an io.Writer publishing each write as a message.
type Publisher struct {
	Client Client
	Topic  string
	QoS    byte
}

// ClientOptionsFromURL creates ClientOptions from URL.
// The URL path is the topic prefix, query client-id sets the client ID.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// Connect connects the broker at brokerURL and creates a Publisher.
// defaultClientID is used when the URL doesn't specify one.
func Connect(brokerURL, defaultClientID string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID(defaultClientID)
	}
	opts.SetOnConnectHandler(func(paho.Client) {
		glog.Info("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(c paho.Client, err error) {
		glog.Warningf("mqtt connection lost: %v", err)
	})
	client := paho.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err = token.Error(); err != nil {
		return nil, err
	}
	return &Publisher{Client: client, Topic: topicPrefix + DefaultTopic}, nil
}

// Write implements io.Writer.
func (p *Publisher) Write(b []byte) (int, error) {
	payload := append([]byte(nil), b...)
	if glog.V(2) {
		glog.Infof("PUB %q %d bytes", p.Topic, len(payload))
	}
	token := p.Client.Publish(p.Topic, p.QoS, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	p.Client.Disconnect(250)
	return nil
}
