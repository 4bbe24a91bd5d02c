package db

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS exam_question_bank (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exam_year INTEGER NOT NULL,
  booklet_type TEXT NOT NULL DEFAULT 'A',
  subject_name TEXT NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  question_no_subject INTEGER NOT NULL DEFAULT 0,
  question_text TEXT NOT NULL,
  choices_json TEXT NOT NULL,
  official_answer TEXT NOT NULL DEFAULT '',
  service_answer TEXT NOT NULL DEFAULT '',
  explanation_text TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL,
  UNIQUE(exam_year, subject_code, question_no_exam, booklet_type)
);

CREATE TABLE IF NOT EXISTS exam_choice_ox_bank (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_bank_id INTEGER NOT NULL REFERENCES exam_question_bank(id) ON DELETE CASCADE,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  choice_no INTEGER NOT NULL,
  choice_text TEXT NOT NULL,
  choice_explanation_text TEXT NOT NULL DEFAULT '',
  is_ox_eligible INTEGER NOT NULL DEFAULT 1,
  expected_ox TEXT NOT NULL DEFAULT '',
  judge_reason TEXT NOT NULL DEFAULT '',
  judge_confidence TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL,
  UNIQUE(question_bank_id, choice_no)
);

CREATE TABLE IF NOT EXISTS app_users (
  user_id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_choice_visibility (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES app_users(user_id) ON DELETE CASCADE,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  choice_no INTEGER NOT NULL,
  hidden INTEGER NOT NULL DEFAULT 1,
  updated_at INTEGER NOT NULL,
  UNIQUE(user_id, exam_year, subject_code, question_no_exam, choice_no)
);

CREATE TABLE IF NOT EXISTS user_exam_attempts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES app_users(user_id) ON DELETE CASCADE,
  mode TEXT NOT NULL,
  exam_year INTEGER,
  subject_code TEXT NOT NULL,
  total_questions INTEGER NOT NULL,
  answered_questions INTEGER NOT NULL,
  correct_count INTEGER NOT NULL,
  score_100 REAL NOT NULL,
  duration_seconds INTEGER NOT NULL DEFAULT 0,
  started_at TEXT,
  finished_at INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  CHECK (correct_count <= answered_questions AND answered_questions <= total_questions)
);

CREATE TABLE IF NOT EXISTS user_exam_attempt_answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  attempt_id INTEGER NOT NULL REFERENCES user_exam_attempts(id) ON DELETE CASCADE,
  item_kind TEXT NOT NULL,
  question_bank_id INTEGER REFERENCES exam_question_bank(id) ON DELETE SET NULL,
  ox_item_id INTEGER REFERENCES exam_choice_ox_bank(id) ON DELETE SET NULL,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  choice_no INTEGER,
  selected_answer TEXT NOT NULL DEFAULT '',
  correct_answer TEXT NOT NULL DEFAULT '',
  is_correct INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_subject_recent_scores (
  user_id TEXT NOT NULL REFERENCES app_users(user_id) ON DELETE CASCADE,
  subject_code TEXT NOT NULL,
  mode TEXT NOT NULL,
  last_attempt_id INTEGER NOT NULL REFERENCES user_exam_attempts(id) ON DELETE RESTRICT,
  last_exam_year INTEGER,
  last_score_100 REAL NOT NULL,
  attempts_count INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (user_id, subject_code, mode)
);

CREATE TABLE IF NOT EXISTS bank_user_notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  state TEXT NOT NULL,
  memo TEXT NOT NULL,
  tags TEXT NOT NULL,
  source TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  last_reviewed_at INTEGER,
  UNIQUE(user_id, exam_year, subject_code, question_no_exam)
);

CREATE TABLE IF NOT EXISTS bank_user_favorites (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  color TEXT NOT NULL,
  memo TEXT NOT NULL,
  tags TEXT NOT NULL,
  source TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE(user_id, exam_year, subject_code, question_no_exam)
);

CREATE INDEX IF NOT EXISTS idx_bank_year_subject
  ON exam_question_bank(exam_year, subject_code, question_no_exam);
CREATE INDEX IF NOT EXISTS idx_ox_subject
  ON exam_choice_ox_bank(subject_code, is_ox_eligible);
CREATE INDEX IF NOT EXISTS idx_choice_visibility_user_subject
  ON user_choice_visibility(user_id, exam_year, subject_code, question_no_exam);
CREATE INDEX IF NOT EXISTS idx_attempts_user_subject
  ON user_exam_attempts(user_id, subject_code, mode, finished_at DESC);
CREATE INDEX IF NOT EXISTS idx_attempt_answers_attempt
  ON user_exam_attempt_answers(attempt_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS exam_question_bank (
  id BIGSERIAL PRIMARY KEY,
  exam_year INTEGER NOT NULL,
  booklet_type TEXT NOT NULL DEFAULT 'A',
  subject_name TEXT NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  question_no_subject INTEGER NOT NULL DEFAULT 0,
  question_text TEXT NOT NULL,
  choices_json TEXT NOT NULL,
  official_answer TEXT NOT NULL DEFAULT '',
  service_answer TEXT NOT NULL DEFAULT '',
  explanation_text TEXT NOT NULL DEFAULT '',
  updated_at BIGINT NOT NULL,
  UNIQUE(exam_year, subject_code, question_no_exam, booklet_type)
);

CREATE TABLE IF NOT EXISTS exam_choice_ox_bank (
  id BIGSERIAL PRIMARY KEY,
  question_bank_id BIGINT NOT NULL REFERENCES exam_question_bank(id) ON DELETE CASCADE,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  choice_no INTEGER NOT NULL,
  choice_text TEXT NOT NULL,
  choice_explanation_text TEXT NOT NULL DEFAULT '',
  is_ox_eligible INTEGER NOT NULL DEFAULT 1,
  expected_ox TEXT NOT NULL DEFAULT '',
  judge_reason TEXT NOT NULL DEFAULT '',
  judge_confidence TEXT NOT NULL DEFAULT '',
  updated_at BIGINT NOT NULL,
  UNIQUE(question_bank_id, choice_no)
);

CREATE TABLE IF NOT EXISTS app_users (
  user_id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_choice_visibility (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES app_users(user_id) ON DELETE CASCADE,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  choice_no INTEGER NOT NULL,
  hidden INTEGER NOT NULL DEFAULT 1,
  updated_at BIGINT NOT NULL,
  UNIQUE(user_id, exam_year, subject_code, question_no_exam, choice_no)
);

CREATE TABLE IF NOT EXISTS user_exam_attempts (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES app_users(user_id) ON DELETE CASCADE,
  mode TEXT NOT NULL,
  exam_year INTEGER,
  subject_code TEXT NOT NULL,
  total_questions INTEGER NOT NULL,
  answered_questions INTEGER NOT NULL,
  correct_count INTEGER NOT NULL,
  score_100 DOUBLE PRECISION NOT NULL,
  duration_seconds INTEGER NOT NULL DEFAULT 0,
  started_at TEXT,
  finished_at BIGINT NOT NULL,
  created_at BIGINT NOT NULL,
  CHECK (correct_count <= answered_questions AND answered_questions <= total_questions)
);

CREATE TABLE IF NOT EXISTS user_exam_attempt_answers (
  id BIGSERIAL PRIMARY KEY,
  attempt_id BIGINT NOT NULL REFERENCES user_exam_attempts(id) ON DELETE CASCADE,
  item_kind TEXT NOT NULL,
  question_bank_id BIGINT REFERENCES exam_question_bank(id) ON DELETE SET NULL,
  ox_item_id BIGINT REFERENCES exam_choice_ox_bank(id) ON DELETE SET NULL,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  choice_no INTEGER,
  selected_answer TEXT NOT NULL DEFAULT '',
  correct_answer TEXT NOT NULL DEFAULT '',
  is_correct INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_subject_recent_scores (
  user_id TEXT NOT NULL REFERENCES app_users(user_id) ON DELETE CASCADE,
  subject_code TEXT NOT NULL,
  mode TEXT NOT NULL,
  last_attempt_id BIGINT NOT NULL REFERENCES user_exam_attempts(id) ON DELETE RESTRICT,
  last_exam_year INTEGER,
  last_score_100 DOUBLE PRECISION NOT NULL,
  attempts_count INTEGER NOT NULL,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY (user_id, subject_code, mode)
);

CREATE TABLE IF NOT EXISTS bank_user_notes (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  state TEXT NOT NULL,
  memo TEXT NOT NULL,
  tags TEXT NOT NULL,
  source TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  last_reviewed_at BIGINT,
  UNIQUE(user_id, exam_year, subject_code, question_no_exam)
);

CREATE TABLE IF NOT EXISTS bank_user_favorites (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL,
  exam_year INTEGER NOT NULL,
  subject_code TEXT NOT NULL,
  question_no_exam INTEGER NOT NULL,
  color TEXT NOT NULL,
  memo TEXT NOT NULL,
  tags TEXT NOT NULL,
  source TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  UNIQUE(user_id, exam_year, subject_code, question_no_exam)
);

CREATE INDEX IF NOT EXISTS idx_bank_year_subject
  ON exam_question_bank(exam_year, subject_code, question_no_exam);
CREATE INDEX IF NOT EXISTS idx_ox_subject
  ON exam_choice_ox_bank(subject_code, is_ox_eligible);
CREATE INDEX IF NOT EXISTS idx_choice_visibility_user_subject
  ON user_choice_visibility(user_id, exam_year, subject_code, question_no_exam);
CREATE INDEX IF NOT EXISTS idx_attempts_user_subject
  ON user_exam_attempts(user_id, subject_code, mode, finished_at DESC);
CREATE INDEX IF NOT EXISTS idx_attempt_answers_attempt
  ON user_exam_attempt_answers(attempt_id);
`
