package api

import (
	"net/http"
)

const playUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Inkdrift</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: monospace;
            background: #1a1a2e;
            color: #eee;
            height: 100vh;
            display: flex;
            flex-direction: column;
        }
        header {
            background: #16213e;
            padding: 12px 20px;
            border-bottom: 1px solid #0f3460;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 16px; font-weight: normal; }
        #status {
            padding: 4px 10px;
            border-radius: 4px;
            font-size: 12px;
        }
        #status.connected { background: #1b4332; color: #95d5b2; }
        #status.disconnected { background: #7f1d1d; color: #fca5a5; }
        main { flex: 1; display: flex; overflow: hidden; }
        #play {
            flex: 2;
            padding: 20px;
            overflow-y: auto;
            display: flex;
            flex-direction: column;
            gap: 16px;
        }
        #text {
            background: #16213e;
            border-radius: 4px;
            border-left: 3px solid #059669;
            padding: 16px;
            font-size: 14px;
            line-height: 1.6;
            white-space: pre-wrap;
        }
        #choices { display: flex; flex-direction: column; gap: 8px; }
        #choices button {
            background: #2563eb;
            border: none;
            border-radius: 4px;
            padding: 10px 14px;
            color: #fff;
            font-family: monospace;
            font-size: 13px;
            text-align: left;
            cursor: pointer;
        }
        #choices button:hover { background: #1d4ed8; }
        #choices button:disabled { background: #374151; color: #9ca3af; cursor: not-allowed; }
        #sidebar {
            flex: 1;
            padding: 20px;
            border-left: 1px solid #0f3460;
            overflow-y: auto;
            font-size: 12px;
        }
        #sidebar h2 { font-size: 13px; color: #60a5fa; margin: 12px 0 6px; }
        #sidebar ul { list-style: none; }
        #sidebar li { padding: 2px 0; color: #9ca3af; }
        .controls { display: flex; gap: 8px; align-items: center; }
        .controls input {
            background: #1a1a2e;
            border: 1px solid #0f3460;
            border-radius: 4px;
            padding: 6px 10px;
            color: #eee;
            font-family: monospace;
            font-size: 12px;
            width: 120px;
        }
        .controls button {
            background: #059669;
            border: none;
            border-radius: 4px;
            padding: 6px 12px;
            color: #fff;
            font-family: monospace;
            font-size: 12px;
            cursor: pointer;
        }
        .controls button:hover { background: #047857; }
        #eventlog {
            height: 140px;
            overflow-y: auto;
            border-top: 1px solid #0f3460;
            background: #16213e;
            padding: 8px 20px;
            font-size: 11px;
            color: #6b7280;
        }
        .ended { border-left-color: #dc2626 !important; }
    </style>
</head>
<body>
    <header>
        <h1 id="title">Inkdrift</h1>
        <div class="controls">
            <button onclick="newGame()">New Game</button>
            <input type="text" id="slot" placeholder="slot name">
            <button onclick="saveGame()">Save</button>
            <button onclick="loadGame()">Load</button>
            <span id="status" class="disconnected">Disconnected</span>
        </div>
    </header>
    <main>
        <div id="play">
            <div id="text">Press New Game to begin.</div>
            <div id="choices"></div>
        </div>
        <div id="sidebar">
            <h2>Stats</h2><ul id="stats"></ul>
            <h2>Inventory</h2><ul id="inventory"></ul>
            <h2>Flags</h2><ul id="flags"></ul>
            <h2>History</h2><ul id="history"></ul>
        </div>
    </main>
    <div id="eventlog"></div>

    <script>
        let sessionId = null;

        function render(data) {
            sessionId = data.session_id;
            const textEl = document.getElementById('text');
            textEl.textContent = data.scene.text || '...';
            textEl.className = data.scene.ended ? 'ended' : '';

            const choicesEl = document.getElementById('choices');
            choicesEl.innerHTML = '';
            (data.scene.choices || []).forEach(function(c, i) {
                const btn = document.createElement('button');
                btn.textContent = (i + 1) + '. ' + c.label;
                btn.disabled = !c.enabled;
                btn.onclick = function() { choose(i); };
                choicesEl.appendChild(btn);
            });

            renderList('stats', data.stats, function(k, v) { return k + ': ' + v; });
            renderList('inventory', data.inventory, function(k, v) { return k + ' x' + v; });
            renderArray('flags', data.flags);
            renderArray('history', data.history);
        }

        function renderList(id, obj, fmt) {
            const ul = document.getElementById(id);
            ul.innerHTML = '';
            Object.keys(obj || {}).sort().forEach(function(k) {
                const li = document.createElement('li');
                li.textContent = fmt(k, obj[k]);
                ul.appendChild(li);
            });
        }

        function renderArray(id, arr) {
            const ul = document.getElementById(id);
            ul.innerHTML = '';
            (arr || []).forEach(function(v) {
                const li = document.createElement('li');
                li.textContent = v;
                ul.appendChild(li);
            });
        }

        function call(method, path, body) {
            return fetch(path, {
                method: method,
                headers: { 'Content-Type': 'application/json' },
                body: body ? JSON.stringify(body) : undefined
            }).then(function(res) { return res.json(); });
        }

        function newGame() {
            call('POST', '/sessions').then(function(data) {
                if (data.ok) render(data);
            });
        }

        function choose(i) {
            if (!sessionId) return;
            call('POST', '/sessions/' + sessionId + '/choose', { index: i }).then(function(data) {
                if (data.ok) render(data);
                else logLine('rejected: ' + (data.error || data.kind));
            });
        }

        function saveGame() {
            if (!sessionId) return;
            const slot = document.getElementById('slot').value.trim() || 'quicksave';
            call('POST', '/sessions/' + sessionId + '/save', { slot: slot }).then(function(data) {
                logLine(data.ok ? 'saved to ' + data.slot : 'save failed: ' + data.error);
            });
        }

        function loadGame() {
            const slot = document.getElementById('slot').value.trim() || 'quicksave';
            call('POST', '/sessions/load', { slot: slot }).then(function(data) {
                if (data.ok) render(data);
                else logLine('load failed: ' + (data.error || data.kind));
            });
        }

        function logLine(text) {
            const logEl = document.getElementById('eventlog');
            const div = document.createElement('div');
            div.textContent = text;
            logEl.appendChild(div);
            logEl.scrollTop = logEl.scrollHeight;
            while (logEl.children.length > 200) logEl.removeChild(logEl.firstChild);
        }

        function connect() {
            const statusEl = document.getElementById('status');
            const protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
            const ws = new WebSocket(protocol + '//' + location.host + '/ws/events');
            ws.onopen = function() {
                statusEl.className = 'connected';
                statusEl.textContent = 'Connected';
            };
            ws.onmessage = function(msg) {
                try {
                    const e = JSON.parse(msg.data);
                    logLine(e.ts + ' ' + e.event + (e.msg ? ' ' + e.msg : ''));
                } catch (err) {}
            };
            ws.onclose = function() {
                statusEl.className = 'disconnected';
                statusEl.textContent = 'Disconnected';
                setTimeout(connect, 3000);
            };
        }

        connect();
        fetch('/story').then(function(r) { return r.json(); }).then(function(s) {
            if (s.title) document.getElementById('title').textContent = s.title;
        }).catch(function() {});
    </script>
</body>
</html>`

// uiHandler serves the play/debug HTML page.
func uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(playUIHTML))
}
