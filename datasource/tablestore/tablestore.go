package tablestore

import (
	"fmt"
	"sync"

	"github.com/aliyun/aliyun-tablestore-go-sdk/tablestore"
)

type TableStoreClient struct {
	client *tablestore.TableStoreClient
}

var (
	mu                  sync.RWMutex
	tablestoreInstances = make(map[string]*TableStoreClient)
)

func RegisterTableStoreClient(name string, client *tablestore.TableStoreClient) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := tablestoreInstances[name]; !ok {
		tablestoreInstances[name] = &TableStoreClient{client: client}
	}
}

func GetTableStoreClient(name string) (*TableStoreClient, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := tablestoreInstances[name]
	if !ok {
		return nil, fmt.Errorf("TableStoreClient not found, name:%s", name)
	}

	return p, nil
}

func RemoveTableStoreClient(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(tablestoreInstances, name)
}

func (o *TableStoreClient) GetClient() *tablestore.TableStoreClient {
	return o.client
}
