package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

const topicReadAttempts = 5

// ensureTopic creates topicName unless the broker already reports partitions for it.
// Partition reads are retried because a fresh broker often refuses metadata requests.
func ensureTopic(admin topicAdmin, topicName string, numPartitions, replicationFactor int, retryInterval time.Duration, log *slog.Logger) error {
	var partitions []kafka.Partition
	readPartitions := func() error {
		var err error
		partitions, err = admin.ReadPartitions(topicName)
		if err != nil {
			log.Warn("Failed to read partitions, retrying", "topic", topicName, "error", err)
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), topicReadAttempts-1)
	if err := backoff.Retry(readPartitions, policy); err == nil && len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}
	if topicConfig.NumPartitions <= 0 {
		topicConfig.NumPartitions = 1
	}
	if topicConfig.ReplicationFactor <= 0 {
		topicConfig.ReplicationFactor = 1
	}

	log.Info("Creating Kafka topic", "topic", topicName, "partitions", topicConfig.NumPartitions)
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	return nil
}

// dialAndEnsureTopic opens an admin connection just long enough to provision the topic
func dialAndEnsureTopic(brokers, topicName string, numPartitions, replicationFactor int, log *slog.Logger) error {
	conn, err := kafka.Dial("tcp", brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return ensureTopic(conn, topicName, numPartitions, replicationFactor, 2*time.Second, log)
}
