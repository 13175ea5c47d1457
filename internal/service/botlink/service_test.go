package botlink

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"testCraftBot/internal/domain/models"
	tgclient "testCraftBot/internal/pkg/tg"
	"testCraftBot/internal/repository"
	"testCraftBot/internal/service/messages"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.Account
}

func newFakeAccountRepo(accs ...*models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[uuid.UUID]*models.Account)}
	for _, acc := range accs {
		copied := *acc
		repo.accounts[acc.ID] = &copied
	}

	return repo
}

func (r *fakeAccountRepo) ByChatID(_ context.Context, chatID int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, acc := range r.accounts {
		if acc.ChatID == chatID {
			copied := *acc
			return &copied, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepo) LinkChat(_ context.Context, accountID uuid.UUID, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.ChatID = chatID

	return nil
}

func (r *fakeAccountRepo) UpdateProfilePhoto(_ context.Context, accountID uuid.UUID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acc, ok := r.accounts[accountID]; ok {
		acc.ProfilePhotoURL = url
	}

	return nil
}

func (r *fakeAccountRepo) UpdateChatUsername(_ context.Context, accountID uuid.UUID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acc, ok := r.accounts[accountID]; ok {
		acc.ChatUsername = username
	}

	return nil
}

func (r *fakeAccountRepo) UpdateLanguage(_ context.Context, accountID uuid.UUID, language string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acc, ok := r.accounts[accountID]; ok {
		acc.Language = language
	}

	return nil
}

func (r *fakeAccountRepo) stored(accountID uuid.UUID) models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	return *r.accounts[accountID]
}

type sentMessage struct {
	chatID  int64
	text    string
	buttons []tgclient.Button
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []sentMessage
	photoURL string
	blocked  bool
}

func (b *fakeBot) ProfilePhotoURL(_ int64) (string, error) {
	return b.photoURL, nil
}

func (b *fakeBot) SendMessage(chatID int64, text string, buttons ...tgclient.Button) (tgclient.SendResult, error) {
	b.mu.Lock()
	b.sent = append(b.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	b.mu.Unlock()

	return tgclient.SendResult{Blocked: b.blocked}, nil
}

func (b *fakeBot) Self() string { return "testcraft_bot" }

func (b *fakeBot) messages() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]sentMessage, len(b.sent))
	copy(out, b.sent)

	return out
}

type fakeAvatars struct {
	owned map[string]bool
}

func (a *fakeAvatars) Owns(url string) bool { return a.owned[url] }

type fakeIssuer struct {
	code string
	err  error

	mu     sync.Mutex
	issued []uuid.UUID
}

func (i *fakeIssuer) Issue(_ context.Context, accountID uuid.UUID, _ models.CodeType) (string, error) {
	i.mu.Lock()
	i.issued = append(i.issued, accountID)
	i.mu.Unlock()

	return i.code, i.err
}

type fakeSettings struct{}

func (fakeSettings) ValueOrDefault(_ context.Context, _ string, def string) string { return def }

func newTestService(repo AccountRepo, bot BotGateway, avatars AvatarStore, codes CodeIssuer) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, repo, bot, avatars, codes, fakeSettings{}, messages.New(log, ""))
}

func testAccount(chatID int64) *models.Account {
	return &models.Account{
		ID:       uuid.New(),
		Login:    "johndoe",
		Name:     "Джон",
		ChatID:   chatID,
		Language: "ru",
		Status:   models.AccountStatusVerified,
	}
}

func TestRegisterLinksChat(t *testing.T) {
	acc := testAccount(0)
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{photoURL: "https://api.telegram.org/file/photo.jpg"}
	svc := newTestService(repo, bot, &fakeAvatars{}, &fakeIssuer{})

	err := svc.HandleRegister(context.Background(), Identity{ChatID: 100, Username: "john_tg"}, acc, "ru")
	require.NoError(t, err)

	stored := repo.stored(acc.ID)
	require.Equal(t, int64(100), stored.ChatID)
	require.Equal(t, "john_tg", stored.ChatUsername)
	require.Equal(t, "https://api.telegram.org/file/photo.jpg", stored.ProfilePhotoURL)

	sent := bot.messages()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].text, "Джон")
	// верифицированный аккаунт получает одну кнопку — на сайт
	require.Len(t, sent[0].buttons, 1)
}

func TestRegisterUnverifiedGetsAdminButton(t *testing.T) {
	acc := testAccount(0)
	acc.Status = models.AccountStatusUnverified
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{}
	svc := newTestService(repo, bot, &fakeAvatars{}, &fakeIssuer{})

	err := svc.HandleRegister(context.Background(), Identity{ChatID: 100}, acc, "ru")
	require.NoError(t, err)

	sent := bot.messages()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].buttons, 2)
	require.Contains(t, sent[0].buttons[0].URL, "https://t.me/")
	// prefilled-текст просьбы url-кодируется
	require.Contains(t, sent[0].buttons[0].URL, "?text=")
	require.NotContains(t, sent[0].buttons[0].URL, " ")
}

func TestRegisterSameChatIsIdempotent(t *testing.T) {
	acc := testAccount(100)
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{}
	svc := newTestService(repo, bot, &fakeAvatars{}, &fakeIssuer{})

	err := svc.HandleRegister(context.Background(), Identity{ChatID: 100}, acc, "ru")
	require.NoError(t, err)

	sent := bot.messages()
	require.Len(t, sent, 1)
	require.Equal(t, int64(100), repo.stored(acc.ID).ChatID)
}

func TestRegisterChatBoundToOtherAccountRejected(t *testing.T) {
	other := testAccount(100)
	acc := testAccount(0)
	acc.Login = "janedoe"
	repo := newFakeAccountRepo(other, acc)
	bot := &fakeBot{}
	svc := newTestService(repo, bot, &fakeAvatars{}, &fakeIssuer{})

	err := svc.HandleRegister(context.Background(), Identity{ChatID: 100, Username: "intruder"}, acc, "ru")
	require.NoError(t, err)

	// ни один из аккаунтов не изменён
	require.Equal(t, int64(0), repo.stored(acc.ID).ChatID)
	require.Equal(t, int64(100), repo.stored(other.ID).ChatID)
	require.Empty(t, repo.stored(acc.ID).ChatUsername)
	require.Empty(t, repo.stored(other.ID).ChatUsername)

	sent := bot.messages()
	require.Len(t, sent, 1)
}

func TestSyncPreservesUploadedPhoto(t *testing.T) {
	acc := testAccount(100)
	acc.ProfilePhotoURL = "https://s3.testcraft.kg/avatars/custom.png"
	acc.ChatUsername = "old_name"
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{photoURL: "https://api.telegram.org/file/photo.jpg"}
	avatars := &fakeAvatars{owned: map[string]bool{acc.ProfilePhotoURL: true}}
	svc := newTestService(repo, bot, avatars, &fakeIssuer{})

	err := svc.HandleRegister(context.Background(), Identity{ChatID: 100, Username: "new_name"}, acc, "ru")
	require.NoError(t, err)

	stored := repo.stored(acc.ID)
	// загруженное пользователем фото не перезаписывается,
	// username при этом синхронизируется
	require.Equal(t, "https://s3.testcraft.kg/avatars/custom.png", stored.ProfilePhotoURL)
	require.Equal(t, "new_name", stored.ChatUsername)
}

func TestSyncReplacesBotSourcedPhoto(t *testing.T) {
	acc := testAccount(100)
	acc.ProfilePhotoURL = "https://api.telegram.org/file/old.jpg"
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{photoURL: "https://api.telegram.org/file/new.jpg"}
	svc := newTestService(repo, bot, &fakeAvatars{}, &fakeIssuer{})

	err := svc.HandleRegister(context.Background(), Identity{ChatID: 100}, acc, "ru")
	require.NoError(t, err)

	require.Equal(t, "https://api.telegram.org/file/new.jpg", repo.stored(acc.ID).ProfilePhotoURL)
}

func TestLoginUnlinkedDelegatesToRegister(t *testing.T) {
	acc := testAccount(0)
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{}
	issuer := &fakeIssuer{code: "123456"}
	svc := newTestService(repo, bot, &fakeAvatars{}, issuer)

	err := svc.HandleLogin(context.Background(), Identity{ChatID: 100}, acc, "ru")
	require.NoError(t, err)

	// первый вход привязывает чат, код не выдаётся
	require.Equal(t, int64(100), repo.stored(acc.ID).ChatID)
	require.Empty(t, issuer.issued)
}

func TestLoginMismatchedChatRejected(t *testing.T) {
	acc := testAccount(100)
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{}
	issuer := &fakeIssuer{code: "123456"}
	svc := newTestService(repo, bot, &fakeAvatars{}, issuer)

	err := svc.HandleLogin(context.Background(), Identity{ChatID: 200, Username: "intruder"}, acc, "ru")
	require.NoError(t, err)

	require.Empty(t, issuer.issued)
	require.Equal(t, int64(100), repo.stored(acc.ID).ChatID)
	require.Empty(t, repo.stored(acc.ID).ChatUsername)

	sent := bot.messages()
	require.Len(t, sent, 1)
	require.Equal(t, int64(200), sent[0].chatID)
}

func TestLoginSendsCode(t *testing.T) {
	acc := testAccount(100)
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{}
	issuer := &fakeIssuer{code: "654321"}
	svc := newTestService(repo, bot, &fakeAvatars{}, issuer)

	err := svc.HandleLogin(context.Background(), Identity{ChatID: 100}, acc, "ru")
	require.NoError(t, err)

	require.Equal(t, []uuid.UUID{acc.ID}, issuer.issued)

	sent := bot.messages()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].text, "654321")
}

func TestLoginBlockedDeliveryReportsBotName(t *testing.T) {
	acc := testAccount(100)
	repo := newFakeAccountRepo(acc)
	bot := &fakeBot{blocked: true}
	issuer := &fakeIssuer{code: "654321"}
	svc := newTestService(repo, bot, &fakeAvatars{}, issuer)

	err := svc.HandleLogin(context.Background(), Identity{ChatID: 100}, acc, "ru")
	require.NoError(t, err)

	sent := bot.messages()
	require.Len(t, sent, 2)
	require.True(t, strings.Contains(sent[1].text, "testcraft_bot"))
}
