package dedup

import (
	"sync"
	"testing"

	"go-locator/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_KeepsFirstOccurrence(t *testing.T) {
	b := NewBuffer()

	assert.True(t, b.Accept(models.Listing{Link: "l1", Title: "Job1"}))
	assert.True(t, b.Accept(models.Listing{Link: "l2", Title: "Job2"}))
	assert.False(t, b.Accept(models.Listing{Link: "l2", Title: "Job2-dup"}))
	assert.False(t, b.Accept(models.Listing{Link: " l1 ", Title: "Job1 again"}))

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, b.Duplicates())
}

func TestBuffer_RejectsMissingLink(t *testing.T) {
	b := NewBuffer()
	assert.False(t, b.Accept(models.Listing{Title: "no link"}))
	assert.False(t, b.Accept(models.Listing{Link: "   "}))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Duplicates())
}

func TestBuffer_ConcurrentAccept(t *testing.T) {
	b := NewBuffer()
	var wg sync.WaitGroup
	accepted := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- b.Accept(models.Listing{Link: "same"})
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for ok := range accepted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
