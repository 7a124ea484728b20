package service

import (
	"context"
	"errors"
	"sync"
)

// fakeBlobStore 内存对象存储，记录上传和删除
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failUp  bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) UploadFile(objectKey string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUp {
		return "", errors.New("upload failed")
	}
	f.objects[objectKey] = data
	return f.GetURL(objectKey), nil
}

func (f *fakeBlobStore) Delete(objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeBlobStore) GetURL(objectKey string) string {
	return "https://cdn.example.com/" + objectKey
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeVendorClient 可编程的检测 API
type fakeVendorClient struct {
	result    map[string]interface{}
	err       error
	lastModel string
	calls     int
}

func (f *fakeVendorClient) Check(ctx context.Context, image []byte, filename, model string) (map[string]interface{}, error) {
	f.calls++
	f.lastModel = model
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeMailer 记录发送的欢迎邮件
type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendWelcome(to, name string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}
