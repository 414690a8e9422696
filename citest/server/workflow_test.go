package server_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/solace-ai/solace/citest/testutil"
	"github.com/solace-ai/solace/pkg/types"
)

func createSession(c *testutil.Client) types.Session {
	var session types.Session
	status, err := c.Post("/chat/sessions", nil, &session)
	Expect(err).NotTo(HaveOccurred())
	Expect(status).To(Equal(http.StatusCreated))
	Expect(session.ID).NotTo(BeEmpty())
	return session
}

var _ = Describe("Authentication", func() {
	It("rejects requests without a token", func() {
		anon := testutil.NewClient(testServer.BaseURL, "")
		status, err := anon.Get("/chat/sessions", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("rejects tokens signed with the wrong secret", func() {
		forged := testutil.NewClient(testServer.BaseURL, "not-a-real-token")
		status, err := forged.Get("/chat/sessions", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("serves /health without auth", func() {
		anon := testutil.NewClient(testServer.BaseURL, "")
		status, err := anon.Get("/health", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
	})
})

var _ = Describe("Session Workflows", func() {
	It("creates, retrieves and lists sessions", func() {
		session := createSession(alice)

		var retrieved types.Session
		status, err := alice.Get("/chat/sessions/"+session.ID, &retrieved)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(retrieved.ID).To(Equal(session.ID))
		Expect(retrieved.Status).To(Equal(types.SessionActive))

		var summaries []types.SessionSummary
		status, err = alice.Get("/chat/sessions", &summaries)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(summaries).NotTo(BeEmpty())
	})

	It("hides sessions from other owners", func() {
		session := createSession(alice)

		status, err := bob.Get("/chat/sessions/"+session.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("completes a session exactly once", func() {
		session := createSession(alice)

		var completed types.Session
		status, err := alice.Post("/chat/sessions/"+session.ID+"/complete", nil, &completed)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(completed.Status).To(Equal(types.SessionCompleted))

		status, err = alice.Post("/chat/sessions/"+session.ID+"/complete", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusConflict))
	})
})

var _ = Describe("Message Processing", func() {
	It("runs the full message cycle", func() {
		session := createSession(alice)

		var result types.ChatResult
		status, err := alice.Post("/chat/sessions/"+session.ID+"/messages",
			map[string]string{"message": "I had a quiet day today"}, &result)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(result.Reply).To(Equal(testutil.MockModelReply))
		Expect(result.Analysis.EmotionalState).To(Equal("reflective"))
		Expect(result.StressPrompt).To(BeNil())

		var history []types.Message
		status, err = alice.Get("/chat/sessions/"+session.ID+"/history", &history)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(history).To(HaveLen(2))
		Expect(history[0].Role).To(Equal(types.RoleUser))
		Expect(history[1].Role).To(Equal(types.RoleAssistant))
		Expect(history[1].Metadata).NotTo(BeNil())
	})

	It("short-circuits to a calming activity on stress signals", func() {
		session := createSession(alice)
		callsBefore := testServer.Model.Calls()

		var result types.ChatResult
		status, err := alice.Post("/chat/sessions/"+session.ID+"/messages",
			map[string]string{"message": "The pressure is getting to me"}, &result)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(result.StressPrompt).NotTo(BeNil())
		Expect(result.StressPrompt.Trigger).To(Equal("pressure"))
		Expect(result.Reply).To(ContainSubstring(result.StressPrompt.Activity.Title))
		Expect(testServer.Model.Calls()).To(Equal(callsBefore), "stress cycles never call the model")

		var history []types.Message
		_, err = alice.Get("/chat/sessions/"+session.ID+"/history", &history)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(1))
	})

	It("rejects empty messages", func() {
		session := createSession(alice)

		status, err := alice.Post("/chat/sessions/"+session.ID+"/messages",
			map[string]string{"message": "   "}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("rejects messages to unknown sessions", func() {
		status, err := alice.Post("/chat/sessions/does-not-exist/messages",
			map[string]string{"message": "hello"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("Mood Tracking", func() {
	It("records and lists mood entries", func() {
		var entry types.MoodEntry
		status, err := alice.Post("/mood", map[string]any{"score": 58, "note": "steady"}, &entry)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusCreated))
		Expect(entry.ID).NotTo(BeEmpty())
		Expect(entry.Score).To(Equal(58))

		var entries []types.MoodEntry
		status, err = alice.Get("/mood", &entries)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(entries).NotTo(BeEmpty())

		var bobEntries []types.MoodEntry
		_, err = bob.Get("/mood", &bobEntries)
		Expect(err).NotTo(HaveOccurred())
		for _, e := range bobEntries {
			Expect(e.ID).NotTo(Equal(entry.ID))
		}
	})

	It("rejects out-of-range scores", func() {
		status, err := alice.Post("/mood", map[string]any{"score": 250}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusBadRequest))
	})
})
