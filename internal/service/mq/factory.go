package mq

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	TypeRedis = "redis"
	TypeKafka = "kafka"
)

// NewProducer 按 redis.mq_type 选择实现
func NewProducer(mqType string, rdb *redis.Client, brokers []string) (Producer, error) {
	switch mqType {
	case TypeKafka:
		return NewKafkaProducer(brokers), nil
	case TypeRedis, "":
		return NewRedisProducer(rdb), nil
	}
	return nil, fmt.Errorf("unknown mq type %q", mqType)
}

// NewConsumer 按 redis.mq_type 选择实现
func NewConsumer(mqType string, rdb *redis.Client, brokers []string, group, name string) (Consumer, error) {
	switch mqType {
	case TypeKafka:
		return NewKafkaConsumer(brokers, group), nil
	case TypeRedis, "":
		return NewRedisConsumer(rdb, group, name), nil
	}
	return nil, fmt.Errorf("unknown mq type %q", mqType)
}
