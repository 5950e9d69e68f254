package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestEmitGameOverSendsJSON(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event GameOverEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Winner != "W" || event.Moves != 11 {
			return errors.New("unexpected event payload")
		}
		return nil
	})
	producer := newEventProducerWith(mock, "omok-analytics")

	err := producer.EmitGameOver(GameOverEvent{Event: "GAME_OVER", GameID: "g-1", Winner: "W", Moves: 11, Duration: 1.5})
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestEmitGameOverReportsSendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer := newEventProducerWith(mock, "omok-analytics")

	err := producer.EmitGameOver(GameOverEvent{Event: "GAME_OVER", GameID: "g-2", Winner: "B"})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestHookPublishesFinishedGames(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndSucceed()
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer := newEventProducerWith(mock, "omok-analytics")

	game := NewGame(humanSettings())
	game.SetGameOverHook(producer.Hook())
	game.Start()
	for i := 0; i < 4; i++ {
		require.NoError(t, game.TryApplyMove(Move{Row: i, Col: 0}))
		require.NoError(t, game.TryApplyMove(Move{Row: i, Col: 5}))
	}
	require.NoError(t, game.TryApplyMove(Move{Row: 4, Col: 0}))

	// a failed send is logged, never surfaced to the game
	producer.Hook()(GameOverEvent{Event: "GAME_OVER", GameID: "g-3", Winner: "W"})
	require.NoError(t, producer.Close())
}

func TestHookDoesNotWaitForBroker(t *testing.T) {
	release := make(chan struct{})
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func([]byte) error {
		<-release
		return nil
	})
	producer := newEventProducerWith(mock, "omok-analytics")

	returned := make(chan struct{})
	go func() {
		producer.Hook()(GameOverEvent{Event: "GAME_OVER", GameID: "g-4", Winner: "B"})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("hook blocked on a slow broker")
	}
	close(release)
	require.NoError(t, producer.Close())
}

func TestProducerConfigWithSCRAM(t *testing.T) {
	t.Setenv("KAFKA_USER", "omok")
	t.Setenv("KAFKA_PASSWORD", "secret")

	config := producerConfig()
	require.NoError(t, config.Validate())
	require.True(t, config.Net.SASL.Enable)
	require.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA256), config.Net.SASL.Mechanism)

	client := config.Net.SASL.SCRAMClientGeneratorFunc()
	require.NoError(t, client.Begin("omok", "secret", ""))
	first, err := client.Step("")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first, "n,,n=omok,r="), first)
	require.False(t, client.Done())
}

func TestProducerConfigWithoutCredentials(t *testing.T) {
	t.Setenv("KAFKA_USER", "")
	config := producerConfig()
	require.NoError(t, config.Validate())
	require.False(t, config.Net.SASL.Enable)
}
