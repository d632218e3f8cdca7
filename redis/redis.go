package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"goswapbridge/config"
	"goswapbridge/types"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
)

var pool *redis.Pool

func timeoutDialOptions() []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
}

func Init() {
	redisAddr := fmt.Sprintf("%s:%d", config.Config.Server.RedisHost, config.Config.Server.RedisPort)
	pool = &redis.Pool{
		MaxIdle: 5,
		Dial:    func() (redis.Conn, error) { return redis.Dial("tcp", redisAddr, timeoutDialOptions()...) },
	}
}

// The off-chain quoting service remembers which route (oneinch, paraswap,
// ...) produced the last quote; the swap path must execute through the same
// route.

func GetPathfinderRoute() (string, error) {
	conn := pool.Get()
	defer conn.Close()

	route, err := redis.String(conn.Do("GET", "pathfinder:route"))
	if err == nil {
		return route, nil
	}

	if errors.Is(err, redis.ErrNil) {
		return "", nil
	}

	log.Printf("error Redis get: %s", err.Error())
	return "", err
}

func SetPathfinderRoute(route string) error {
	conn := pool.Get()
	defer conn.Close()

	_, err := conn.Do("SET", "pathfinder:route", route)
	if err != nil {
		log.Printf("error Redis set: %s", err.Error())
		return err
	}

	return nil
}

func ClearPathfinderRoute() error {
	conn := pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", "pathfinder:route")
	if err != nil {
		log.Printf("error Redis del: %s", err.Error())
		return err
	}

	return nil
}

// note that multiple sets should not contain one record
func UpsertTransferRecord(rec *types.TransferRecord) error {
	conn := pool.Get()
	defer conn.Close()

	if rec == nil {
		return errors.New("null object to store")
	}

	if rec.Status == "" {
		return errors.New("transfer record cannot have empty status")
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	recordKey := fmt.Sprintf("transfer:%s:%s", rec.Status, rec.ID)

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cannot marshal transfer record to JSON: %s", err.Error())
	}

	_, err = conn.Do("SET", recordKey, recJSON)
	if err != nil {
		log.Printf("error Redis SET: %s", err.Error())
		return err
	}

	// also add the key to the corresponding SET
	_, err = conn.Do("SADD", config.RedisStatusSets[rec.Status], recordKey)
	if err != nil {
		log.Printf("error Redis SADD: %s", err.Error())
		return err
	}

	return nil
}

func ChangeTransferRecordStatus(rec *types.TransferRecord, prevStatus string) error {
	conn := pool.Get()
	defer conn.Close()

	if rec == nil {
		return errors.New("null object to store")
	}

	if rec.Status == "" {
		return errors.New("transfer record cannot have empty status")
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	prevRecordKey := fmt.Sprintf("transfer:%s:%s", prevStatus, rec.ID)
	recordKey := fmt.Sprintf("transfer:%s:%s", rec.Status, rec.ID)

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cannot marshal transfer record to JSON: %s", err.Error())
	}

	_, err = conn.Do("SREM", config.RedisStatusSets[prevStatus], prevRecordKey)
	if err != nil {
		log.Printf("error Redis SREM: %s", err.Error())
		return err
	}

	_, err = conn.Do("DEL", prevRecordKey)
	if err != nil {
		log.Printf("error Redis DEL: %s", err.Error())
		return err
	}

	_, err = conn.Do("SET", recordKey, recJSON)
	if err != nil {
		log.Printf("error Redis SET: %s", err.Error())
		return err
	}

	_, err = conn.Do("SADD", config.RedisStatusSets[rec.Status], recordKey)
	if err != nil {
		log.Printf("error Redis SADD: %s", err.Error())
		return err
	}

	return nil
}

// Attention, this operation scans everything under the status set
// (O(n), acceptable while sets stay small; processed records should be
// archived if this ever grows)
func FindTransferRecordByTransactionID(transactionID string) (*types.TransferRecord, error) {
	for status := range config.RedisStatusSets {
		recs, err := FindAllTransferRecordsByStatus(status)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if rec.TransactionID == transactionID {
				return rec, nil
			}
		}
	}
	return nil, nil
}

func FindAllTransferRecordsByStatus(status string) ([]*types.TransferRecord, error) {
	conn := pool.Get()
	defer conn.Close()

	if _, ok := config.RedisStatusSets[status]; !ok {
		return nil, errors.New("redis key not found for status")
	}

	recs := make([]*types.TransferRecord, 0)

	// scan every record present in Redis
	var cursor int64

	for {
		values, err := redis.Values(conn.Do("SSCAN", config.RedisStatusSets[status], cursor))
		if err != nil {
			return nil, err
		}

		var recKeys []string
		values, err = redis.Scan(values, &cursor, &recKeys)
		if err != nil {
			return nil, err
		}

		for _, key := range recKeys {
			rec, err := redis.Bytes(conn.Do("GET", key))
			if err != nil && !errors.Is(err, redis.ErrNil) {
				log.Printf("error Redis GET: %s", err.Error())
				return nil, err
			}

			var recStruct types.TransferRecord
			err = json.Unmarshal(rec, &recStruct)
			if err != nil {
				return nil, err
			}
			if recStruct.Status == status {
				recs = append(recs, &recStruct)
			}
		}

		if cursor == 0 {
			break
		}
	}

	return recs, nil
}
